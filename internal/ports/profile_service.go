package ports

import (
	"context"

	"github.com/Gunvolt24/steam_cache/internal/domain"
)

// ProfileService — прикладной сервис кэша профилей для транспортов (HTTP, Kafka, CLI).
type ProfileService interface {
	CacheUser(ctx context.Context, steamID string) (*domain.Profile, error)
	RefreshOne(ctx context.Context, steamID string) (*domain.Profile, error)
	ForceRefresh(ctx context.Context, steamID string) (*domain.Profile, error)
	RefreshAll(ctx context.Context) (domain.BulkReport, error)
	GetProfile(ctx context.Context, steamID string) (*domain.Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]string, error)
}

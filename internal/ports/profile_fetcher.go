package ports

import (
	"context"

	"github.com/Gunvolt24/steam_cache/internal/domain"
)

// ProfileFetcher — удалённый источник профилей (Steam Web API).
type ProfileFetcher interface {
	// FetchProfiles — профили для не более чем domain.MaxBatchSize Steam ID.
	// Steam ID, которых нет в ответе, в карте отсутствуют.
	FetchProfiles(ctx context.Context, steamIDs []string) (map[string]domain.PlayerSummary, error)
}

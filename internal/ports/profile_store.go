package ports

import (
	"context"

	"github.com/Gunvolt24/steam_cache/internal/domain"
)

// ProfileStore — хранилище закэшированных профилей, одна запись на Steam ID.
// Носитель (файлы, Postgres, Redis) не важен для логики обновления.
type ProfileStore interface {
	// Exists — есть ли запись для Steam ID.
	Exists(ctx context.Context, steamID string) (bool, error)

	// Get — прочитать запись; domain.ErrNotFound если её нет,
	// domain.ErrCorruptRecord если полезную нагрузку не удалось разобрать.
	Get(ctx context.Context, steamID string) (*domain.Profile, error)

	// Save — создать или целиком перезаписать запись.
	// Частично записанное состояние не должно быть видно читателям.
	Save(ctx context.Context, profile *domain.Profile) error

	// ListIDs — все Steam ID в хранилище, порядок не определён.
	ListIDs(ctx context.Context) ([]string, error)
}

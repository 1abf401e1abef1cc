package domain

import "time"

const (
	// SteamIDLength — длина Steam ID (SteamID64 в десятичной записи).
	SteamIDLength = 17

	// MaxBatchSize — сколько Steam ID принимает GetPlayerSummaries за один вызов.
	MaxBatchSize = 100

	// PlaceholderUsername — ник, пока реальное имя не получено.
	PlaceholderUsername = "Loading nickname..."

	// FallbackAvatar — аватар по умолчанию для неподдерживаемых форматов.
	FallbackAvatar = "https://i.imgur.com/c1UWC6V.png"
)

// AllowedAvatarExtensions — расширения аватаров, которые отдаём как есть.
var AllowedAvatarExtensions = []string{"jpg", "jpeg", "png"}

// Profile — закэшированный профиль пользователя Steam.
// SteamID — ключ записи, в полезную нагрузку не сериализуется.
type Profile struct {
	SteamID  string `json:"-"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Update   int64  `json:"update"` // unix-время последней успешной записи
}

// UpdatedAt — время последней записи как time.Time.
func (p *Profile) UpdatedAt() time.Time {
	return time.Unix(p.Update, 0)
}

// PlayerSummary — одна запись ответа GetPlayerSummaries (только нужные поля).
type PlayerSummary struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
	AvatarFull  string `json:"avatarfull"`
}

package usecase

import (
	"path"
	"strings"

	"github.com/Gunvolt24/steam_cache/internal/domain"
)

// Normalize — приводит ответ Steam к (ник, аватар) для записи в кэш.
// Никогда не падает: пустой ник даёт плейсхолдер, неподдерживаемый формат аватара даёт запасной URL.
// Нулевой PlayerSummary (профиля нет в ответе) нормализуется в плейсхолдер и запасной аватар.
func Normalize(s domain.PlayerSummary) (username, avatar string) {
	username = s.PersonaName
	if username == "" {
		username = domain.PlaceholderUsername
	}

	avatar = domain.FallbackAvatar
	if allowedAvatar(s.AvatarFull) {
		avatar = s.AvatarFull
	}
	return username, avatar
}

// avatarExt — расширение имени файла из URL; ведущие точки имени не считаются
// расширением, поэтому у "/.png" расширения нет.
func avatarExt(u string) string {
	base := strings.TrimLeft(path.Base(u), ".")
	return strings.ToLower(strings.TrimPrefix(path.Ext(base), "."))
}

func allowedAvatar(u string) bool {
	ext := avatarExt(u)
	if ext == "" {
		return false
	}
	for _, allowed := range domain.AllowedAvatarExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

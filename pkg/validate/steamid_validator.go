package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Gunvolt24/steam_cache/internal/domain"
)

// ErrInvalidSteamID — базовая (sentinel error) ошибка валидации Steam ID.
// Совпадает с domain.ErrInvalidIdentifier, чтобы errors.Is работал в обе стороны.
var ErrInvalidSteamID = domain.ErrInvalidIdentifier

// SteamID — проверяет Steam ID до любого обращения к хранилищу или сети.
// Единственное внешнее ограничение — длина ровно domain.SteamIDLength символов
// (считаются руны, а не байты).
func SteamID(steamID string) error {
	if n := utf8.RuneCountInString(steamID); n != domain.SteamIDLength {
		return fmt.Errorf("%w: length must be %d, got %d", ErrInvalidSteamID, domain.SteamIDLength, n)
	}
	return nil
}

// NormalizeSteamID — убирает пробельные символы по краям (ввод из CLI, файлов, Kafka)
// и проверяет результат.
func NormalizeSteamID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if err := SteamID(id); err != nil {
		return "", err
	}
	return id, nil
}

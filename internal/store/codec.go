// Пакет store — общий формат полезной нагрузки для всех реализаций ports.ProfileStore.
// Формат совместим с файлами data/<steamid>.json: {"username","avatar","update"}.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/steam_cache/internal/domain"
)

// payload — проводное представление записи; указатели позволяют отличить
// отсутствующее поле от пустого значения.
type payload struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
	Update   *int64  `json:"update"`
}

// Encode — сериализует профиль; ошибка оборачивает domain.ErrEncoding.
func Encode(profile *domain.Profile) ([]byte, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: profile is nil", domain.ErrEncoding)
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	return raw, nil
}

// Decode — строгий разбор записи: все три поля обязательны,
// неизвестные поля и данные после объекта считаются повреждением.
func Decode(steamID string, raw []byte) (*domain.Profile, error) {
	var p payload
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: steam_id=%s: %v", domain.ErrCorruptRecord, steamID, err)
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("%w: steam_id=%s: trailing data", domain.ErrCorruptRecord, steamID)
	}
	if p.Username == nil || p.Avatar == nil || p.Update == nil {
		return nil, fmt.Errorf("%w: steam_id=%s: missing fields", domain.ErrCorruptRecord, steamID)
	}

	return &domain.Profile{
		SteamID:  steamID,
		Username: *p.Username,
		Avatar:   *p.Avatar,
		Update:   *p.Update,
	}, nil
}

// Clone — копия профиля, чтобы внешние изменения не затрагивали хранилище.
func Clone(profile *domain.Profile) *domain.Profile {
	if profile == nil {
		return nil
	}
	cloned := *profile
	return &cloned
}

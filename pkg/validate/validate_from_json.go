package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// steamIDMessage — JSON-представление одного Steam ID (строка JSONL, сообщение Kafka).
type steamIDMessage struct {
	SteamID string `json:"steamid"`
}

// SteamIDFromJSON — строгий разбор {"steamid": "..."} с проверкой Steam ID.
func SteamIDFromJSON(raw []byte) (string, error) {
	var msg steamIDMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&msg); err != nil {
		return "", fmt.Errorf("%w: invalid json: %v", ErrInvalidSteamID, err)
	}
	// гарантируем отсутствие данных после объекта
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return "", fmt.Errorf("%w: invalid json: trailing data", ErrInvalidSteamID)
	}
	return NormalizeSteamID(msg.SteamID)
}

// SteamIDFromMessage — Steam ID из сырого сообщения: либо JSON-объект, либо просто текст.
func SteamIDFromMessage(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return SteamIDFromJSON(trimmed)
	}
	return NormalizeSteamID(string(trimmed))
}

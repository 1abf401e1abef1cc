package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatText  InputFormat = "text"
	FormatJSONL InputFormat = "jsonl"
)

// ResolveFormat — формат по расширению файла для FormatAuto.
func ResolveFormat(filePath string, format InputFormat) (InputFormat, error) {
	switch format {
	case FormatText, FormatJSONL:
		return format, nil
	case FormatAuto, "":
		if strings.EqualFold(filepath.Ext(filePath), ".jsonl") {
			return FormatJSONL, nil
		}
		// по умолчанию считаем, что один Steam ID на строку
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// ReadSteamIDFile — читает список Steam ID из файла (text или jsonl).
func ReadSteamIDFile(ctx context.Context, filePath string, format InputFormat) (StreamResult, error) {
	resolved, err := ResolveFormat(filePath, format)
	if err != nil {
		return StreamResult{}, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return StreamResult{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return ReadSteamIDStream(ctx, file, resolved)
}

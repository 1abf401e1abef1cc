package validate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// StreamResult — итог разбора списка Steam ID.
type StreamResult struct {
	Valid             []string // уникальные валидные Steam ID в порядке появления
	DuplicatesCount   int
	InvalidLinesCount int
}

// String — краткая сводка для вывода в консоль.
func (r StreamResult) String() string {
	return fmt.Sprintf("%d valid / %d invalid / %d duplicates", len(r.Valid), r.InvalidLinesCount, r.DuplicatesCount)
}

// ReadSteamIDStream — читает построчно (text или jsonl), невалидные строки считает и пропускает.
// Пустые строки и строки-комментарии (#) пропускаются.
func ReadSteamIDStream(ctx context.Context, ir io.Reader, format InputFormat) (StreamResult, error) {
	var res StreamResult
	seen := make(map[string]struct{})

	parse := NormalizeSteamID
	if format == FormatJSONL {
		parse = func(line string) (string, error) { return SteamIDFromJSON([]byte(line)) }
	}

	scanner := bufio.NewScanner(ir)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, err := parse(line)
		if err != nil {
			res.InvalidLinesCount++
			continue
		}
		if _, dup := seen[id]; dup {
			res.DuplicatesCount++
			continue
		}
		seen[id] = struct{}{}
		res.Valid = append(res.Valid, id)
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}

package domain

import "time"

// BatchFailure — батч, который не удалось обработать.
type BatchFailure struct {
	Index    int      `json:"index"`
	SteamIDs []string `json:"steam_ids"`
	Error    string   `json:"error"`
}

// BulkReport — итог массового обновления кэша.
type BulkReport struct {
	Total         int            `json:"total"`          // сколько Steam ID в кэше
	Skipped       int            `json:"skipped"`        // свежие записи, отфильтрованные до запроса
	Batches       int            `json:"batches"`        // сколько вызовов API сделано
	Updated       []string       `json:"updated"`        // перезаписанные записи
	Missing       []string       `json:"missing"`        // не вернулись в ответе API
	Orphans       []string       `json:"orphans"`        // вернулись в ответе, но локальной записи нет
	FailedRecords []string       `json:"failed_records"` // ошибка записи конкретного профиля
	FailedBatches []BatchFailure `json:"failed_batches"`
	Elapsed       time.Duration  `json:"elapsed"`
}

// Empty — в кэше нечего обновлять.
func (r *BulkReport) Empty() bool { return r.Total == 0 }

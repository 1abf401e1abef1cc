//go:build integration

package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Gunvolt24/steam_cache/internal/domain"
)

var profileSeq atomic.Int64

// MakeSteamID — уникальный в рамках процесса Steam ID длиной 17 символов.
func MakeSteamID() string {
	n := profileSeq.Add(1)
	return fmt.Sprintf("7656%013d", n*1_000_000+time.Now().UnixNano()%1_000_000)
}

// MakeProfile — валидный профиль с уникальным Steam ID.
func MakeProfile() *domain.Profile {
	id := MakeSteamID()
	return &domain.Profile{
		SteamID:  id,
		Username: "user-" + id[len(id)-6:],
		Avatar:   "https://avatars.steamstatic.com/" + id + "_full.jpg",
		Update:   time.Now().Unix(),
	}
}

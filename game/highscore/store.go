package highscore

import (
	"context"
	"errors"
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for a backend name it does not know
var ErrUnknownBackend = errors.New("unknown high score backend")

// ErrNegativeScore is returned when a store is asked to save a score below zero
var ErrNegativeScore = errors.New("high score cannot be negative")

// Store loads and saves the single best score.
// A store that has never been written loads as 0. SaveHighScore keeps the
// maximum: a score at or below the stored one leaves it unchanged, so several
// processes sharing a backend never lower it.
type Store interface {
	LoadHighScore(ctx context.Context) (int, error)
	SaveHighScore(ctx context.Context, score int) error
	Close() error
}

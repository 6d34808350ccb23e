package highscore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Tracker caches the best score of a Store and only writes through when a
// score beats it
type Tracker struct {
	store  Store
	logger *slog.Logger

	mu     sync.Mutex
	best   int
	loaded bool
}

// NewTracker wraps store. The stored value is read lazily on first use.
func NewTracker(store Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, logger: logger}
}

// ensureLoaded must be called with mu held
func (t *Tracker) ensureLoaded(ctx context.Context) error {
	if t.loaded {
		return nil
	}
	best, err := t.store.LoadHighScore(ctx)
	if err != nil {
		return fmt.Errorf("load high score: %w", err)
	}
	t.best = best
	t.loaded = true
	return nil
}

// Best returns the best score seen so far
func (t *Tracker) Best(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return t.best, nil
}

// Offer records score if it beats the best and reports whether it did.
// The store may have been raised by another process since it was last read,
// so the cache is refreshed from the store after every write.
func (t *Tracker) Offer(ctx context.Context, score int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureLoaded(ctx); err != nil {
		return false, err
	}
	if score <= t.best {
		return false, nil
	}

	if err := t.store.SaveHighScore(ctx, score); err != nil {
		return false, fmt.Errorf("save high score: %w", err)
	}

	stored, err := t.store.LoadHighScore(ctx)
	if err != nil {
		// the write succeeded, so score is at least a lower bound
		t.logger.Warn("failed to reload high score", "error", err)
		stored = score
	}
	previous := t.best
	t.best = max(stored, score)
	if t.best > score {
		t.logger.Debug("high score already beaten elsewhere", "score", score, "best", t.best)
		return false, nil
	}

	t.logger.Debug("high score saved", "previous", previous, "score", score)
	return true, nil
}

// Close closes the underlying store
func (t *Tracker) Close() error {
	return t.store.Close()
}

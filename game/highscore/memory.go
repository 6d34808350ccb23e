package highscore

import (
	"context"
	"sync"
)

// MemoryStore keeps the high score in process memory only
type MemoryStore struct {
	mu    sync.Mutex
	score int
}

// NewMemoryStore returns a store starting at initial
func NewMemoryStore(initial int) *MemoryStore {
	return &MemoryStore{score: initial}
}

func (s *MemoryStore) LoadHighScore(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, nil
}

func (s *MemoryStore) SaveHighScore(ctx context.Context, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if score < 0 {
		return ErrNegativeScore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if score > s.score {
		s.score = score
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

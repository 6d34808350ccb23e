package highscore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how often the tracker reaches the backing store
type countingStore struct {
	MemoryStore
	loads   int
	saves   int
	saveErr error
	loadErr error
}

func (s *countingStore) LoadHighScore(ctx context.Context) (int, error) {
	s.loads++
	if s.loadErr != nil {
		return 0, s.loadErr
	}
	return s.MemoryStore.LoadHighScore(ctx)
}

func (s *countingStore) SaveHighScore(ctx context.Context, score int) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStore.SaveHighScore(ctx, score)
}

func TestTrackerBest(t *testing.T) {
	store := &countingStore{MemoryStore: MemoryStore{score: 300}}
	tracker := NewTracker(store, nil)
	ctx := context.Background()

	best, err := tracker.Best(ctx)
	require.NoError(t, err)
	assert.Equal(t, 300, best)

	_, err = tracker.Best(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads, "best should be cached after the first load")
}

func TestTrackerOffer(t *testing.T) {
	store := &countingStore{MemoryStore: MemoryStore{score: 100}}
	tracker := NewTracker(store, nil)
	ctx := context.Background()

	improved, err := tracker.Offer(ctx, 50)
	require.NoError(t, err)
	assert.False(t, improved)

	improved, err = tracker.Offer(ctx, 100)
	require.NoError(t, err)
	assert.False(t, improved, "equal score is not a new record")
	assert.Equal(t, 0, store.saves)

	improved, err = tracker.Offer(ctx, 128)
	require.NoError(t, err)
	assert.True(t, improved)
	assert.Equal(t, 1, store.saves)

	persisted, err := store.MemoryStore.LoadHighScore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 128, persisted)

	best, err := tracker.Best(ctx)
	require.NoError(t, err)
	assert.Equal(t, 128, best)
}

func TestTrackerSaveFailureKeepsPreviousBest(t *testing.T) {
	store := &countingStore{saveErr: errors.New("disk full")}
	tracker := NewTracker(store, nil)
	ctx := context.Background()

	improved, err := tracker.Offer(ctx, 64)
	assert.Error(t, err)
	assert.False(t, improved)

	best, err := tracker.Best(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, best)

	// Retried once the store recovers
	store.saveErr = nil
	improved, err = tracker.Offer(ctx, 64)
	require.NoError(t, err)
	assert.True(t, improved)
}

func TestTrackerLoadFailure(t *testing.T) {
	store := &countingStore{loadErr: errors.New("unreachable")}
	tracker := NewTracker(store, nil)

	_, err := tracker.Best(context.Background())
	assert.Error(t, err)

	_, err = tracker.Offer(context.Background(), 10)
	assert.Error(t, err)
	assert.Equal(t, 0, store.saves)
}

func TestTrackerConcurrentOffers(t *testing.T) {
	tracker := NewTracker(NewMemoryStore(0), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 200; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := tracker.Offer(ctx, score)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	best, err := tracker.Best(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, best)
}

func TestTrackerSharedStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	first := NewTracker(store, nil)
	second := NewTracker(store, nil)

	improved, err := first.Offer(ctx, 100)
	require.NoError(t, err)
	assert.True(t, improved)

	improved, err = second.Offer(ctx, 200)
	require.NoError(t, err)
	assert.True(t, improved)

	// first still caches 100 and must not drag the shared best down to 150
	improved, err = first.Offer(ctx, 150)
	require.NoError(t, err)
	assert.False(t, improved)

	stored, err := store.LoadHighScore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, stored)

	best, err := first.Best(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, best)
}

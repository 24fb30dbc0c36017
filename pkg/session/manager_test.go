package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/heartaxis/pkg/adapters/memory"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/aretw0/heartaxis/pkg/ports"
	"github.com/aretw0/heartaxis/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.Session
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]domain.Session)
	}
	s.data[sessionID] = *sess
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.data[sessionID]; ok {
		return &sess, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_UpdateIsSerialized(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	_, _, err := manager.LoadOrStart(ctx, id, true, domain.DefaultSettings())
	require.NoError(t, err)

	// Each update increments sumI; without locking, read-modify-write loses updates.
	var wg sync.WaitGroup
	writers := 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(s *domain.Session) error {
				cur, _ := s.Inputs.SumI.Float()
				s.Inputs = s.Inputs.With(domain.FieldSumI, domain.Number(cur+1))
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, final.Inputs.SumI.Equal(domain.Number(float64(writers))), "got %v", final.Inputs.SumI)
}

func TestManager_LoadOrStart(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	var restores int32
	var mu sync.Mutex
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, restored, err := manager.LoadOrStart(ctx, id, false, domain.DefaultSettings())
			assert.NoError(t, err)
			assert.NotNil(t, s)
			if restored {
				mu.Lock()
				restores++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), restores, "exactly one caller creates the session")

	s, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, s.UseSums)
}

func TestManager_UpdateErrorDoesNotSave(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, _, err := manager.LoadOrStart(ctx, "s", true, domain.DefaultSettings())
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = manager.Update(ctx, "s", func(s *domain.Session) error {
		s.UseSums = false
		return boom
	})
	assert.ErrorIs(t, err, boom)

	s, err := manager.Load(ctx, "s")
	require.NoError(t, err)
	assert.True(t, s.UseSums)

	_, err = manager.Update(ctx, "missing", func(*domain.Session) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type countingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	failWith error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.mu.Lock()
	l.locks++
	l.mu.Unlock()
	return func(ctx context.Context) error {
		l.mu.Lock()
		l.unlocks++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))
	ctx := context.Background()

	_, _, err := manager.LoadOrStart(ctx, "s", true, domain.DefaultSettings())
	require.NoError(t, err)
	require.NoError(t, manager.Delete(ctx, "s"))

	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)

	failing := session.NewManager(memory.NewStore(), session.WithLocker(&countingLocker{failWith: context.DeadlineExceeded}))
	_, err = failing.Load(ctx, "s")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

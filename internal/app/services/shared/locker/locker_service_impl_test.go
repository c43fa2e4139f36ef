package locker

import (
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRedis mimics the JSON encoding of the redis repository.
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: make(map[string]string)}
}

func (m *memoryRedis) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(encoded)
	return nil
}

func (m *memoryRedis) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryRedis) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	m.mu.Lock()
	if _, exists := m.data[key]; exists {
		m.mu.Unlock()
		return false, nil
	}
	m.mu.Unlock()
	return true, m.Set(ctx, key, value, exp)
}

func TestLockService(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRedis()
	locker := NewLockService(repo, zap.NewNop())
	key := "clinicdesk:lock:appointment:1:assignment"

	acquired, owner, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	assert.NotEmpty(t, owner)

	acquired, _, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired, "second caller must not acquire a held lock")

	err = locker.Unlock(ctx, key, "someone-else")
	assert.ErrorIs(t, err, exceptions.ErrKindServer)

	require.NoError(t, locker.Unlock(ctx, key, owner))

	acquired, _, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestLockServiceUnlockExpired(t *testing.T) {
	locker := NewLockService(newMemoryRedis(), zap.NewNop())
	assert.NoError(t, locker.Unlock(context.Background(), "missing", "owner"))
}

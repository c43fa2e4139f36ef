package service_assignment

import (
	"clinicdesk-service/internal/app/config"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	flow := NewFlow(context.Background(), 10, FlowSources{}, zap.NewNop())
	registry.Add(flow)

	found, err := registry.Get(flow.ID)
	require.NoError(t, err)
	assert.Same(t, flow, found)

	_, err = registry.Get("missing")
	assert.ErrorIs(t, err, exceptions.ErrKindNotFound)

	assert.True(t, registry.Remove(flow.ID))
	assert.True(t, flow.IsTornDown())
	assert.False(t, registry.Remove(flow.ID))
	assert.Equal(t, 0, registry.Len())
}

func TestRegistrySweepIdle(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	idle := NewFlow(context.Background(), 1, FlowSources{}, zap.NewNop())
	active := NewFlow(context.Background(), 2, FlowSources{}, zap.NewNop())
	registry.Add(idle)
	registry.Add(active)

	now := time.Now()
	idle.lastActivity = now.Add(-time.Hour)
	active.lastActivity = now.Add(-time.Minute)

	removed := registry.SweepIdle(now, 30*time.Minute)

	assert.Equal(t, []string{idle.ID}, removed)
	assert.True(t, idle.IsTornDown())
	assert.False(t, active.IsTornDown())
	assert.Equal(t, 1, registry.Len())
}

func TestWorkerStop(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	cfg := &config.InternalConfig{Flow: config.Flow{SweepIntervalInSeconds: 1, IdleTimeoutInMinutes: 1}}
	worker := NewWorker(zap.NewNop(), cfg, registry)

	stop := worker.Start(context.Background())
	done := make(chan struct{})
	go func() {
		stop()
		stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

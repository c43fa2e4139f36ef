package service_assignment

import (
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/exceptions"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry holds the open flows of this process, keyed by flow id.
type Registry struct {
	mu    sync.RWMutex
	flows map[string]*Flow
	Log   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		flows: make(map[string]*Flow),
		Log:   logger,
	}
}

func (r *Registry) Add(flow *Flow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[flow.ID] = flow
}

func (r *Registry) Get(flowID string) (*Flow, error) {
	r.mu.RLock()
	flow, ok := r.flows[flowID]
	r.mu.RUnlock()
	if !ok || flow.IsTornDown() {
		return nil, exceptions.ErrFlowNotFound(errors.New("no open flow with this id"), flowID)
	}
	return flow, nil
}

// Remove tears the flow down and forgets it. It reports whether the flow existed.
func (r *Registry) Remove(flowID string) bool {
	r.mu.Lock()
	flow, ok := r.flows[flowID]
	delete(r.flows, flowID)
	r.mu.Unlock()

	if ok {
		flow.TearDown()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}

// SweepIdle removes every flow idle for longer than idleTimeout and returns their ids.
func (r *Registry) SweepIdle(now time.Time, idleTimeout time.Duration) []string {
	r.mu.Lock()
	var expired []*Flow
	for flowID, flow := range r.flows {
		if flow.IsTornDown() || now.Sub(flow.IdleSince()) > idleTimeout {
			expired = append(expired, flow)
			delete(r.flows, flowID)
		}
	}
	r.mu.Unlock()

	flowIDs := make([]string, 0, len(expired))
	for _, flow := range expired {
		flow.TearDown()
		flowIDs = append(flowIDs, flow.ID)
	}

	if len(flowIDs) > 0 {
		r.Log.Info("Registry.SweepIdle removed idle flows",
			zap.Strings(constvars.LoggingFlowIDKey, flowIDs),
			zap.Int(constvars.LoggingFlowCountKey, r.Len()),
		)
	}
	return flowIDs
}

// CloseAll tears down every open flow.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	flows := r.flows
	r.flows = make(map[string]*Flow)
	r.mu.Unlock()

	for _, flow := range flows {
		flow.TearDown()
	}
}

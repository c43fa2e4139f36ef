package service_assignment

import (
	"clinicdesk-service/internal/app/config"
	"clinicdesk-service/internal/pkg/constvars"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker periodically tears down flows whose screen was abandoned without
// an explicit close.
type Worker struct {
	log         *zap.Logger
	registry    *Registry
	interval    time.Duration
	idleTimeout time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

func NewWorker(log *zap.Logger, cfg *config.InternalConfig, registry *Registry) *Worker {
	interval := time.Duration(cfg.Flow.SweepIntervalInSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	idleTimeout := time.Duration(cfg.Flow.IdleTimeoutInMinutes) * time.Minute
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	return &Worker{
		log:         log,
		registry:    registry,
		interval:    interval,
		idleTimeout: idleTimeout,
		stop:        make(chan struct{}),
	}
}

// Start begins the ticker loop. It returns a stop function that also waits
// for the loop to exit.
func (w *Worker) Start(ctx context.Context) (stop func()) {
	ticker := time.NewTicker(w.interval)
	stopped := make(chan struct{})

	w.log.Info("service_assignment.worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_timeout", w.idleTimeout),
	)

	go func() {
		defer close(stopped)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case now := <-ticker.C:
				w.runOnce(now)
			}
		}
	}()

	return func() {
		w.stopOnce.Do(func() { close(w.stop) })
		<-stopped
	}
}

func (w *Worker) runOnce(now time.Time) {
	removed := w.registry.SweepIdle(now, w.idleTimeout)
	w.log.Debug("service_assignment.worker.runOnce tick",
		zap.Time("now", now),
		zap.Int(constvars.LoggingFlowCountKey, w.registry.Len()),
		zap.Int("removed", len(removed)),
	)
}

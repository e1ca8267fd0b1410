package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15 * time.Second

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// ClassifierHealth holds the last known state of the remote classifier.
type ClassifierHealth struct {
	checked atomic.Bool
	healthy atomic.Bool
}

func (h *ClassifierHealth) Store(healthy bool) {
	h.healthy.Store(healthy)
	h.checked.Store(true)
}

// Status is "unknown" until the first probe completes.
func (h *ClassifierHealth) Status() string {
	if !h.checked.Load() {
		return "unknown"
	}
	if h.healthy.Load() {
		return "healthy"
	}
	return "unhealthy"
}

func MonitorClassifierHealth(ctx context.Context, checker HealthChecker, health *ClassifierHealth, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		isHealthy := checker.HealthCheck(probeCtx)
		health.Store(isHealthy)
		if !isHealthy {
			slog.Warn("[HealthCheck] Classifier is unhealthy")
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

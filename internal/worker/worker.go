package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Expirer closes idle sessions and reports how many were closed.
type Expirer interface {
	ExpireIdle(ctx context.Context) int
}

// SessionJanitor periodically expires idle studio sessions so their logos are released.
type SessionJanitor struct {
	sessions Expirer
	interval time.Duration
	logger   *zap.Logger
}

// NewSessionJanitor creates a janitor that sweeps every interval.
func NewSessionJanitor(sessions Expirer, interval time.Duration, logger *zap.Logger) *SessionJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionJanitor{sessions: sessions, interval: interval, logger: logger}
}

// Sweep runs one expiry pass.
func (j *SessionJanitor) Sweep(ctx context.Context) int {
	n := j.sessions.ExpireIdle(ctx)
	if n > 0 {
		j.logger.Info("expired idle sessions", zap.Int("count", n))
	}
	return n
}

// Run sweeps until ctx is done.
func (j *SessionJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("session janitor stopping")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

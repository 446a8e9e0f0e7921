package outbox

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type FailedRetrier interface {
	AutoRetryFailed(ctx context.Context) (*model.RetryFailedResult, error)
}

// Gate reports whether the downstream currently accepts traffic.
type Gate interface {
	Available() bool
}

type RetrierConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Retrier periodically re-sends failed events.
type Retrier struct {
	l       *zap.Logger
	cfg     RetrierConfig
	service FailedRetrier
	gate    Gate
}

type RetrierOption func(*Retrier)

// WithGate skips ticks while gate reports the downstream unavailable.
func WithGate(gate Gate) RetrierOption {
	return func(r *Retrier) {
		r.gate = gate
	}
}

func NewRetrier(l *zap.Logger, cfg RetrierConfig, service FailedRetrier, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		l:       l.With(zap.String("component", "sync_retrier")),
		cfg:     cfg,
		service: service,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run blocks until ctx is done. It returns immediately when disabled.
func (r *Retrier) Run(ctx context.Context) {
	if !r.cfg.Enabled || r.cfg.Interval <= 0 {
		r.l.Info("Sync auto-retry disabled")

		return
	}

	r.l.Info("Sync auto-retry started", zap.Duration("interval", r.cfg.Interval))

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.l.Info("Sync auto-retry stopped")

			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Retrier) tick(ctx context.Context) {
	if r.gate != nil && !r.gate.Available() {
		r.l.Info("Skipping auto-retry, downstream circuit is open")

		return
	}

	result, err := r.service.AutoRetryFailed(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrSyncOperationInProgress) {
			r.l.Info("Skipping auto-retry, another sync operation is running")

			return
		}

		r.l.Error("Failed to retry failed sync events", zap.Error(err))

		return
	}

	if result.Retried == 0 {
		return
	}

	r.l.Info("Auto-retry finished",
		zap.Int("retried", result.Retried),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
}

package outbox

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type countingRetrier struct {
	calls atomic.Int32
	err   error
}

func (c *countingRetrier) AutoRetryFailed(context.Context) (*model.RetryFailedResult, error) {
	c.calls.Add(1)

	if c.err != nil {
		return nil, c.err
	}

	return &model.RetryFailedResult{Retried: 1, Succeeded: 1}, nil
}

func TestRetrierDisabledReturnsImmediately(t *testing.T) {
	svc := &countingRetrier{}
	r := NewRetrier(zap.NewNop(), RetrierConfig{Enabled: false, Interval: time.Millisecond}, svc)

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled retrier did not return")
	}

	assert.Zero(t, svc.calls.Load())
}

func TestRetrierTicksUntilCanceled(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "success"},
		{name: "lock held", err: apperrors.ErrSyncOperationInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &countingRetrier{err: tt.err}
			r := NewRetrier(zap.NewNop(), RetrierConfig{Enabled: true, Interval: 5 * time.Millisecond}, svc)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})

			go func() {
				r.Run(ctx)
				close(done)
			}()

			assert.Eventually(t, func() bool { return svc.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

			cancel()
			<-done
		})
	}
}

type gateFunc func() bool

func (f gateFunc) Available() bool { return f() }

func TestRetrierSkipsTicksWhileGateClosed(t *testing.T) {
	var open atomic.Bool

	svc := &countingRetrier{}
	r := NewRetrier(zap.NewNop(), RetrierConfig{Enabled: true, Interval: 5 * time.Millisecond}, svc,
		WithGate(gateFunc(func() bool { return open.Load() })))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Never(t, func() bool { return svc.calls.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	open.Store(true)
	assert.Eventually(t, func() bool { return svc.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

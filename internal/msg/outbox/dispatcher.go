package outbox

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

const DefaultMaxRetries = 3

type Sender interface {
	Post(ctx context.Context, endpoint string, payload []byte) (*Response, error)
}

// Alerter is told about dispatches that exhausted every attempt.
type Alerter interface {
	DispatchFailed(ctx context.Context, failure Failure)
}

type Failure struct {
	EventID    uuid.UUID
	EntityType string
	EntityID   string
	Action     string
	Endpoint   string
	Attempts   int
	StatusCode int
	Error      string
}

type Config struct {
	Enabled    bool
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
}

// Request is one enveloped payload bound for a downstream endpoint.
type Request struct {
	Endpoint   string
	Payload    []byte
	EntityType string
	EntityID   string
	Action     string
}

type Dispatcher struct {
	l        *zap.Logger
	cfg      Config
	client   Sender
	recorder *Recorder
	alerter  Alerter
	sleep    func(time.Duration)
}

type DispatcherOption func(*Dispatcher)

func WithAlerter(alerter Alerter) DispatcherOption {
	return func(d *Dispatcher) {
		d.alerter = alerter
	}
}

func NewDispatcher(l *zap.Logger, cfg Config, client Sender, recorder *Recorder, opts ...DispatcherOption) *Dispatcher {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	d := &Dispatcher{
		l:        l.With(zap.String("component", "sync_dispatcher")),
		cfg:      cfg,
		client:   client,
		recorder: recorder,
		sleep:    time.Sleep,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Dispatcher) Enabled() bool {
	return d.cfg.Enabled
}

func (d *Dispatcher) TargetURL() string {
	return d.cfg.BaseURL
}

// Available reports whether the sender accepts traffic. Senders without a
// notion of availability always do.
func (d *Dispatcher) Available() bool {
	gate, ok := d.client.(Gate)

	return !ok || gate.Available()
}

// Dispatch delivers req with up to MaxRetries sequential attempts and reports
// whether the downstream accepted it. Every call leaves exactly one event row.
// Cancellation of ctx is ignored: a started dispatch runs to completion.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) bool {
	ctx = context.WithoutCancel(ctx)

	log := d.l.With(
		zap.String("entity_type", req.EntityType),
		zap.String("entity_id", req.EntityID),
		zap.String("action", req.Action),
	)

	if !d.cfg.Enabled {
		log.Info("Sync disabled, skipping")
		d.recorder.Record(ctx, d.newEvent(req, model.SyncStatusSkipped))

		return true
	}

	eventID, recorded := d.recorder.Record(ctx, d.newEvent(req, model.SyncStatusPending))

	update := func(upd model.SyncEventUpdate) {
		if recorded {
			d.recorder.Update(ctx, eventID, upd)
		}
	}

	failure := Failure{
		EventID:    eventID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Action:     req.Action,
		Endpoint:   req.Endpoint,
		Attempts:   d.cfg.MaxRetries,
	}

	for attempt := 0; attempt < d.cfg.MaxRetries; attempt++ {
		if attempt > 0 && d.cfg.RetryDelay > 0 {
			d.sleep(d.cfg.RetryDelay)
		}

		next := model.SyncStatusRetrying
		if attempt == d.cfg.MaxRetries-1 {
			next = model.SyncStatusFailed
		}

		resp, err := d.client.Post(ctx, req.Endpoint, req.Payload)
		if err != nil {
			log.Warn("Sync attempt failed",
				zap.Error(err),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", d.cfg.MaxRetries),
			)

			update(model.SyncEventUpdate{
				Status:       next,
				ErrorMessage: ptr(err.Error()),
				RetryCount:   ptr(attempt + 1),
			})

			failure.StatusCode = 0
			failure.Error = err.Error()

			continue
		}

		if resp.Successful() {
			log.Info("Sync succeeded",
				zap.Int("attempt", attempt+1),
				zap.Int("status_code", resp.StatusCode),
			)

			update(model.SyncEventUpdate{
				Status:             model.SyncStatusSuccess,
				ResponseStatusCode: ptr(resp.StatusCode),
				ResponseBody:       ptr(resp.Body),
				RetryCount:         ptr(attempt),
			})

			return true
		}

		log.Warn("Sync rejected by downstream",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", d.cfg.MaxRetries),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", preview(resp.Body)),
		)

		update(model.SyncEventUpdate{
			Status:             next,
			ResponseStatusCode: ptr(resp.StatusCode),
			ResponseBody:       ptr(resp.Body),
			RetryCount:         ptr(attempt + 1),
		})

		failure.StatusCode = resp.StatusCode
		failure.Error = ""
	}

	log.Error("Sync permanently failed", zap.Int("attempts", d.cfg.MaxRetries))

	if d.alerter != nil {
		d.alerter.DispatchFailed(ctx, failure)
	}

	return false
}

func (d *Dispatcher) newEvent(req Request, status model.SyncStatus) *model.SyncEvent {
	return &model.SyncEvent{
		ID:         uuid.New(),
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Action:     req.Action,
		Status:     status,
		MaxRetries: d.cfg.MaxRetries,
		Payload:    req.Payload,
	}
}

func preview(body string) string {
	const n = 200

	runes := []rune(body)
	if len(runes) <= n {
		return body
	}

	return string(runes[:n])
}

func ptr[T any](v T) *T {
	return &v
}

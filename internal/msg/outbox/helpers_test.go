package outbox

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
)

// memStore mirrors the column semantics of the sync_events table.
type memStore struct {
	mu        sync.Mutex
	events    map[uuid.UUID]*model.SyncEvent
	order     []uuid.UUID
	insertErr error
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{events: make(map[uuid.UUID]*model.SyncEvent)}
}

func (s *memStore) Insert(_ context.Context, _ repository.RepoExtension, event *model.SyncEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return s.insertErr
	}

	stored := *event
	stored.CreatedAt = time.Now()

	if stored.Status != model.SyncStatusPending {
		now := time.Now()
		stored.LastAttemptedAt = &now
	}

	s.events[stored.ID] = &stored
	s.order = append(s.order, stored.ID)

	return nil
}

func (s *memStore) Update(_ context.Context, _ repository.RepoExtension, id uuid.UUID, upd model.SyncEventUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return s.updateErr
	}

	event, ok := s.events[id]
	if !ok {
		return apperrors.ErrSyncEventNotFound
	}

	now := time.Now()
	event.Status = upd.Status
	event.LastAttemptedAt = &now

	if upd.ResponseStatusCode != nil {
		event.ResponseStatusCode = upd.ResponseStatusCode
	}

	if upd.ResponseBody != nil {
		event.ResponseBody = upd.ResponseBody
	}

	if upd.ErrorMessage != nil {
		event.ErrorMessage = upd.ErrorMessage
	}

	if upd.RetryCount != nil {
		event.RetryCount = *upd.RetryCount
	}

	if upd.Status == model.SyncStatusSuccess {
		event.CompletedAt = &now
	}

	return nil
}

func (s *memStore) all() []model.SyncEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]model.SyncEvent, 0, len(s.order))
	for _, id := range s.order {
		events = append(events, *s.events[id])
	}

	return events
}

// downstream answers with codes[i] on the i-th call and repeats the last code afterwards.
type downstream struct {
	server *httptest.Server
	hits   atomic.Int32

	mu      sync.Mutex
	headers []http.Header
	paths   []string
	bodies  [][]byte
}

func newDownstream(t *testing.T, codes ...int) *downstream {
	t.Helper()

	d := &downstream{}
	d.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(d.hits.Add(1))

		body, _ := io.ReadAll(r.Body)

		d.mu.Lock()
		d.headers = append(d.headers, r.Header.Clone())
		d.paths = append(d.paths, r.URL.Path)
		d.bodies = append(d.bodies, body)
		d.mu.Unlock()

		code := codes[len(codes)-1]
		if n <= len(codes) {
			code = codes[n-1]
		}

		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))

	t.Cleanup(d.server.Close)

	return d
}

func newTestDispatcher(t *testing.T, cfg Config, store EventStore, opts ...DispatcherOption) (*Dispatcher, *[]time.Duration) {
	t.Helper()

	l := zap.NewNop()
	client := NewClient(l, cfg.BaseURL, "secret", 2*time.Second)
	d := NewDispatcher(l, cfg, client, NewRecorder(l, store, time.Second), opts...)

	var sleeps []time.Duration
	d.sleep = func(dur time.Duration) {
		sleeps = append(sleeps, dur)
	}

	return d, &sleeps
}

type fakeAlerter struct {
	mu       sync.Mutex
	failures []Failure
}

func (a *fakeAlerter) DispatchFailed(_ context.Context, failure Failure) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failures = append(a.failures, failure)
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/msg/outbox"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
)

// eventRepo is an in-memory sync_events table shared by the dispatcher and SyncService.
type eventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*model.SyncEvent
	seq    time.Time
}

func newEventRepo() *eventRepo {
	return &eventRepo{
		events: make(map[uuid.UUID]*model.SyncEvent),
		seq:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *eventRepo) Insert(_ context.Context, _ repository.RepoExtension, event *model.SyncEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *event
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
		event.ID = stored.ID
	}

	r.seq = r.seq.Add(time.Second)
	stored.CreatedAt = r.seq
	r.events[stored.ID] = &stored

	return nil
}

func (r *eventRepo) Update(_ context.Context, _ repository.RepoExtension, id uuid.UUID, upd model.SyncEventUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return apperrors.ErrSyncEventNotFound
	}

	now := time.Now()
	event.Status = upd.Status
	event.LastAttemptedAt = &now

	if upd.ResponseStatusCode != nil {
		event.ResponseStatusCode = upd.ResponseStatusCode
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

func (r *eventRepo) MarkSuperseded(_ context.Context, _ repository.RepoExtension, id uuid.UUID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return apperrors.ErrSyncEventNotFound
	}

	event.Status = model.SyncStatusSuperseded
	event.ErrorMessage = &message

	return nil
}

func (r *eventRepo) SelectByStatus(_ context.Context, _ repository.RepoExtension, status model.SyncStatus) ([]model.SyncEvent, error) {
	var out []model.SyncEvent

	for _, event := range r.sorted(false) {
		if event.Status == status {
			out = append(out, event)
		}
	}

	return out, nil
}

func (r *eventRepo) List(_ context.Context, _ repository.RepoExtension, filter model.SyncEventFilter) ([]model.SyncEvent, int, error) {
	var matched []model.SyncEvent

	for _, event := range r.sorted(true) {
		if filter.Status != "" && string(event.Status) != filter.Status {
			continue
		}

		if filter.EntityType != "" && event.EntityType != filter.EntityType {
			continue
		}

		matched = append(matched, event)
	}

	total := len(matched)
	start := min(filter.Skip, total)
	end := min(start+filter.Limit, total)

	return matched[start:end], total, nil
}

func (r *eventRepo) AggregateCounts(_ context.Context, _ repository.RepoExtension) (model.SyncCounts, error) {
	var counts model.SyncCounts

	for _, event := range r.sorted(false) {
		counts.Total++

		switch event.Status {
		case model.SyncStatusPending:
			counts.Pending++
		case model.SyncStatusFailed:
			counts.Failed++
		case model.SyncStatusSuccess:
			counts.Success++
		}
	}

	return counts, nil
}

func (r *eventRepo) get(id uuid.UUID) model.SyncEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return *r.events[id]
}

func (r *eventRepo) sorted(desc bool) []model.SyncEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.SyncEvent, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, *event)
	}

	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

func (r *eventRepo) seed(t *testing.T, status model.SyncStatus, entityType string) model.SyncEvent {
	t.Helper()

	event := &model.SyncEvent{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   uuid.NewString(),
		Action:     model.ActionCreate,
		Status:     status,
		MaxRetries: 3,
		Payload:    []byte(`{"action":"create","data":{"id":"x"}}`),
	}

	if err := r.Insert(context.Background(), nil, event); err != nil {
		t.Fatal(err)
	}

	return *event
}

// newDownstream answers every request with code.
func newDownstream(t *testing.T, code int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))

	t.Cleanup(srv.Close)

	return srv
}

func newTestDispatcher(t *testing.T, baseURL string, store outbox.EventStore) *outbox.Dispatcher {
	t.Helper()

	l := zap.NewNop()

	return outbox.NewDispatcher(l,
		outbox.Config{Enabled: true, BaseURL: baseURL, MaxRetries: 2},
		outbox.NewClient(l, baseURL, "secret", time.Second),
		outbox.NewRecorder(l, store, time.Second),
	)
}

type syncCall struct {
	method string
	id     string
}

// fakeSyncer records every call and fails for ids listed in fail.
type fakeSyncer struct {
	mu    sync.Mutex
	calls []syncCall
	fail  map[string]bool
}

func newFakeSyncer(fail ...string) *fakeSyncer {
	s := &fakeSyncer{fail: make(map[string]bool)}
	for _, id := range fail {
		s.fail[id] = true
	}

	return s
}

func (s *fakeSyncer) record(method, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, syncCall{method: method, id: id})

	return !s.fail[id]
}

func (s *fakeSyncer) methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.method)
	}

	return out
}

func (s *fakeSyncer) OrganizationCreate(_ context.Context, data model.OrganizationSyncData) bool {
	return s.record("organization.create", data.ID)
}

func (s *fakeSyncer) OrganizationUpdate(_ context.Context, data model.OrganizationSyncData) bool {
	return s.record("organization.update", data.ID)
}

func (s *fakeSyncer) OrganizationDeactivate(_ context.Context, id string) bool {
	return s.record("organization.deactivate", id)
}

func (s *fakeSyncer) OrganizationReactivate(_ context.Context, id string) bool {
	return s.record("organization.reactivate", id)
}

func (s *fakeSyncer) UserCreate(_ context.Context, data model.UserSyncData, _ *model.MembershipSyncData) bool {
	return s.record("user.create", data.ID)
}

func (s *fakeSyncer) UserUpdate(_ context.Context, data model.UserSyncData) bool {
	return s.record("user.update", data.ID)
}

func (s *fakeSyncer) UserDeactivate(_ context.Context, id string) bool {
	return s.record("user.deactivate", id)
}

func (s *fakeSyncer) UserReactivate(_ context.Context, id string) bool {
	return s.record("user.reactivate", id)
}

func (s *fakeSyncer) UserOrganization(_ context.Context, data model.MembershipSyncData, action string) bool {
	return s.record("user_organization."+action, data.ID)
}

type activeOrgs []model.Organization

func (a activeOrgs) SelectActive(context.Context, repository.RepoExtension) ([]model.Organization, error) {
	return a, nil
}

type activeUsers []model.User

func (a activeUsers) SelectActive(context.Context, repository.RepoExtension) ([]model.User, error) {
	return a, nil
}

type activeMemberships []model.UserOrganization

func (a activeMemberships) SelectActive(context.Context, repository.RepoExtension) ([]model.UserOrganization, error) {
	return a, nil
}

type lockerFunc func(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error

func (f lockerFunc) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	return f(ctx, key, ttl, fn)
}

func fakeOrganization() model.Organization {
	return model.Organization{
		ID:               uuid.New(),
		Name:             gofakeit.Company(),
		URL:              gofakeit.DomainName(),
		SubscriptionTier: defaultSubscriptionTier,
		PrimaryColor:     defaultPrimaryColor,
		Environment:      defaultEnvironment,
		IsActive:         true,
	}
}

func fakeUser() model.User {
	lastName := gofakeit.LastName()

	return model.User{
		ID:                uuid.New(),
		Email:             gofakeit.Email(),
		EncryptedPassword: "$2a$10$hash",
		FirstName:         gofakeit.FirstName(),
		LastName:          &lastName,
		GlobalRole:        model.RoleSalesRep,
		IsActive:          true,
	}
}

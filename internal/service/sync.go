package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/msg/outbox"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/redis"
)

const (
	bulkLockKey        = "sync:bulk"
	defaultBulkLockTTL = 30 * time.Minute
)

type SyncEventRepository interface {
	SelectByStatus(ctx context.Context, ext repository.RepoExtension, status model.SyncStatus) ([]model.SyncEvent, error)
	List(ctx context.Context, ext repository.RepoExtension, filter model.SyncEventFilter) ([]model.SyncEvent, int, error)
	AggregateCounts(ctx context.Context, ext repository.RepoExtension) (model.SyncCounts, error)
	MarkSuperseded(ctx context.Context, ext repository.RepoExtension, id uuid.UUID, message string) error
}

type ActiveOrganizations interface {
	SelectActive(ctx context.Context, ext repository.RepoExtension) ([]model.Organization, error)
}

type ActiveUsers interface {
	SelectActive(ctx context.Context, ext repository.RepoExtension) ([]model.User, error)
}

type ActiveMemberships interface {
	SelectActive(ctx context.Context, ext repository.RepoExtension) ([]model.UserOrganization, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, req outbox.Request) bool
	Enabled() bool
	TargetURL() string
}

type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

type SyncConfig struct {
	BulkConcurrency int
	BulkLockTTL     time.Duration
}

// SyncService implements the recovery operations over the event store.
type SyncService struct {
	log            *zap.Logger
	cfg            SyncConfig
	eventRepo      SyncEventRepository
	orgRepo        ActiveOrganizations
	userRepo       ActiveUsers
	membershipRepo ActiveMemberships
	dispatcher     Dispatcher
	syncer         Syncer
	locker         Locker
	now            func() time.Time
}

func NewSyncService(
	log *zap.Logger,
	cfg SyncConfig,
	eventRepo SyncEventRepository,
	orgRepo ActiveOrganizations,
	userRepo ActiveUsers,
	membershipRepo ActiveMemberships,
	dispatcher Dispatcher,
	syncer Syncer,
	locker Locker,
) *SyncService {
	if cfg.BulkConcurrency < 1 {
		cfg.BulkConcurrency = 1
	}

	if cfg.BulkLockTTL <= 0 {
		cfg.BulkLockTTL = defaultBulkLockTTL
	}

	return &SyncService{
		log:            log,
		cfg:            cfg,
		eventRepo:      eventRepo,
		orgRepo:        orgRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		dispatcher:     dispatcher,
		syncer:         syncer,
		locker:         locker,
		now:            time.Now,
	}
}

func (s *SyncService) Status(ctx context.Context) (*model.SyncStatusSummary, error) {
	counts, err := s.eventRepo.AggregateCounts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count sync events: %w", err)
	}

	return &model.SyncStatusSummary{
		Enabled:     s.dispatcher.Enabled(),
		TargetURL:   s.dispatcher.TargetURL(),
		TotalEvents: counts.Total,
		Pending:     counts.Pending,
		Failed:      counts.Failed,
		Success:     counts.Success,
	}, nil
}

// ListEvents accepts the status filter as either status or status_filter.
func (s *SyncService) ListEvents(ctx context.Context, params model.SyncEventQueryParams) (*model.SyncEventPage, error) {
	status := params.Status
	if status == "" {
		status = params.StatusFilter
	}

	limit := repository.DefaultSyncEventLimit
	if params.Limit != nil {
		limit = repository.ClampSyncEventLimit(*params.Limit)
	}

	skip := max(params.Skip, 0)

	events, total, err := s.eventRepo.List(ctx, nil, model.SyncEventFilter{
		Status:     status,
		EntityType: params.EntityType,
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sync events: %w", err)
	}

	summaries := make([]model.SyncEventSummary, 0, len(events))
	for i := range events {
		summaries = append(summaries, events[i].Summary())
	}

	return &model.SyncEventPage{
		Events: summaries,
		Total:  total,
		Skip:   skip,
		Limit:  limit,
	}, nil
}

// RetryFailed re-sends the stored payload of every failed event. Each re-send
// is a new dispatch with its own event row; the original row is marked
// superseded only when the re-send succeeds.
func (s *SyncService) RetryFailed(ctx context.Context) (*model.RetryFailedResult, error) {
	return s.retryFailed(ctx, retryManual)
}

// AutoRetryFailed is the background variant of RetryFailed. The original row
// is superseded after every re-send, successful or not, so the newest row
// alone carries the entity's state and the failed set never grows between
// passes.
func (s *SyncService) AutoRetryFailed(ctx context.Context) (*model.RetryFailedResult, error) {
	return s.retryFailed(ctx, retryAuto)
}

type retryMode string

const (
	retryManual retryMode = "manual"
	retryAuto   retryMode = "automatic"
)

func (s *SyncService) retryFailed(ctx context.Context, mode retryMode) (*model.RetryFailedResult, error) {
	var result model.RetryFailedResult

	err := s.withBulkLock(ctx, func(ctx context.Context) error {
		events, err := s.eventRepo.SelectByStatus(ctx, nil, model.SyncStatusFailed)
		if err != nil {
			return fmt.Errorf("failed to select failed sync events: %w", err)
		}

		succeeded := make([]bool, len(events))

		s.forEach(len(events), func(i int) {
			event := events[i]

			succeeded[i] = s.dispatcher.Dispatch(ctx, outbox.Request{
				Endpoint:   outbox.EndpointFor(event.EntityType),
				Payload:    event.Payload,
				EntityType: event.EntityType,
				EntityID:   event.EntityID,
				Action:     event.Action,
			})
			if !succeeded[i] && mode == retryManual {
				return
			}

			message := fmt.Sprintf("Superseded by %s retry at %s", mode, s.now().UTC().Format(time.RFC3339))
			if err := s.eventRepo.MarkSuperseded(ctx, nil, event.ID, message); err != nil {
				s.log.Error("failed to mark sync event as superseded",
					zap.Error(err),
					zap.String("event_id", event.ID.String()),
				)
			}
		})

		result.Retried = len(events)
		for _, ok := range succeeded {
			if ok {
				result.Succeeded++
			}
		}

		result.Failed = result.Retried - result.Succeeded

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("retry of failed sync events finished",
		zap.String("mode", string(mode)),
		zap.Int("retried", result.Retried),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)

	return &result, nil
}

// FullSync re-sends every active organization, user and membership through
// the create operations, in that order.
func (s *SyncService) FullSync(ctx context.Context) (*model.FullSyncResult, error) {
	result := model.FullSyncResult{Errors: make([]string, 0)}

	err := s.withBulkLock(ctx, func(ctx context.Context) error {
		orgs, err := s.orgRepo.SelectActive(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to select organizations: %w", err)
		}

		result.Organizations = s.syncAll(len(orgs), &result.Errors, func(i int) (bool, string) {
			return s.syncer.OrganizationCreate(ctx, orgs[i].SyncData()), "org:" + orgs[i].ID.String()
		})

		users, err := s.userRepo.SelectActive(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to select users: %w", err)
		}

		result.Users = s.syncAll(len(users), &result.Errors, func(i int) (bool, string) {
			return s.syncer.UserCreate(ctx, users[i].CreateSyncData(), nil), "user:" + users[i].ID.String()
		})

		memberships, err := s.membershipRepo.SelectActive(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to select user organizations: %w", err)
		}

		result.UserOrganizations = s.syncAll(len(memberships), &result.Errors, func(i int) (bool, string) {
			return s.syncer.UserOrganization(ctx, memberships[i].SyncData(), model.ActionCreate), "user_org:" + memberships[i].ID.String()
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("full sync finished",
		zap.Int("organizations", result.Organizations),
		zap.Int("users", result.Users),
		zap.Int("user_organizations", result.UserOrganizations),
		zap.Int("errors", len(result.Errors)),
	)

	return &result, nil
}

// syncAll runs fn for every index and returns the number of successes.
// Failure markers are appended to errs in index order.
func (s *SyncService) syncAll(n int, errs *[]string, fn func(i int) (bool, string)) int {
	ok := make([]bool, n)
	markers := make([]string, n)

	s.forEach(n, func(i int) {
		ok[i], markers[i] = fn(i)
	})

	synced := 0

	for i := range n {
		if ok[i] {
			synced++
			continue
		}

		*errs = append(*errs, markers[i])
	}

	return synced
}

// forEach calls fn for 0..n-1 with at most BulkConcurrency calls in flight.
// One item is one dispatch, so per-item history stays ordered.
func (s *SyncService) forEach(n int, fn func(i int)) {
	var g errgroup.Group

	g.SetLimit(s.cfg.BulkConcurrency)

	for i := range n {
		g.Go(func() error {
			fn(i)

			return nil
		})
	}

	_ = g.Wait()
}

// withBulkLock runs fn under the cluster-wide bulk lock. Once the lock is
// taken, fn runs to exhaustion even if the caller goes away.
func (s *SyncService) withBulkLock(ctx context.Context, fn func(ctx context.Context) error) error {
	detached := func(ctx context.Context) error {
		return fn(context.WithoutCancel(ctx))
	}

	if s.locker == nil {
		return detached(ctx)
	}

	err := s.locker.WithLock(ctx, bulkLockKey, s.cfg.BulkLockTTL, detached)
	if errors.Is(err, redis.ErrLockHeld) {
		return apperrors.ErrSyncOperationInProgress
	}

	return err
}

//go:build integration

package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/postgres"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("cyberxltr_admin"),
		tcpostgres.WithUsername("admin"),
		tcpostgres.WithPassword("admin"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrateDSN := "pgx5://" + strings.TrimPrefix(dsn, "postgres://")
	require.NoError(t, postgres.Migrate(migrateDSN, "../../migrations"))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(pool.Close)

	return pool
}

func newEvent(status model.SyncStatus, entityType string) *model.SyncEvent {
	return &model.SyncEvent{
		EntityType: entityType,
		EntityID:   uuid.NewString(),
		Action:     model.ActionCreate,
		Status:     status,
		MaxRetries: 3,
		Payload:    []byte(`{"action":"create","data":{}}`),
	}
}

func TestSyncEventRepository(t *testing.T) {
	pool := setupPool(t)
	repo := NewSyncEventRepository(pool)
	ctx := context.Background()

	t.Run("insert and update", func(t *testing.T) {
		event := newEvent(model.SyncStatusPending, model.EntityOrganization)
		require.NoError(t, repo.Insert(ctx, nil, event))
		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.False(t, event.CreatedAt.IsZero())

		code := 500
		body := strings.Repeat("б", model.MaxResponseBodyLength+10)
		retry := 1

		require.NoError(t, repo.Update(ctx, nil, event.ID, model.SyncEventUpdate{
			Status:             model.SyncStatusRetrying,
			ResponseStatusCode: &code,
			ResponseBody:       &body,
			RetryCount:         &retry,
		}))

		got, err := repo.SelectByID(ctx, nil, event.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SyncStatusRetrying, got.Status)
		assert.Equal(t, 1, got.RetryCount)
		require.NotNil(t, got.ResponseBody)
		assert.Equal(t, model.MaxResponseBodyLength, len([]rune(*got.ResponseBody)))
		assert.NotNil(t, got.LastAttemptedAt)
		assert.Nil(t, got.CompletedAt)

		ok := 200
		require.NoError(t, repo.Update(ctx, nil, event.ID, model.SyncEventUpdate{
			Status:             model.SyncStatusSuccess,
			ResponseStatusCode: &ok,
		}))

		got, err = repo.SelectByID(ctx, nil, event.ID)
		require.NoError(t, err)
		assert.NotNil(t, got.CompletedAt)
	})

	t.Run("skipped rows are stamped", func(t *testing.T) {
		event := newEvent(model.SyncStatusSkipped, model.EntityUser)
		require.NoError(t, repo.Insert(ctx, nil, event))
		assert.NotNil(t, event.LastAttemptedAt)
	})

	t.Run("missing event", func(t *testing.T) {
		err := repo.Update(ctx, nil, uuid.New(), model.SyncEventUpdate{Status: model.SyncStatusFailed})
		assert.ErrorIs(t, err, apperrors.ErrSyncEventNotFound)

		_, err = repo.SelectByID(ctx, nil, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrSyncEventNotFound)
	})

	t.Run("supersede", func(t *testing.T) {
		event := newEvent(model.SyncStatusFailed, model.EntityUser)
		require.NoError(t, repo.Insert(ctx, nil, event))

		require.NoError(t, repo.MarkSuperseded(ctx, nil, event.ID, "Superseded by manual retry"))

		got, err := repo.SelectByID(ctx, nil, event.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SyncStatusSuperseded, got.Status)
		require.NotNil(t, got.ErrorMessage)
		assert.Equal(t, "Superseded by manual retry", *got.ErrorMessage)

		failed, err := repo.SelectByStatus(ctx, nil, model.SyncStatusFailed)
		require.NoError(t, err)

		for _, e := range failed {
			assert.NotEqual(t, event.ID, e.ID)
		}
	})

	t.Run("list and aggregate", func(t *testing.T) {
		_, err := pool.Exec(ctx, "TRUNCATE sync_events")
		require.NoError(t, err)

		for range 3 {
			require.NoError(t, repo.Insert(ctx, nil, newEvent(model.SyncStatusFailed, model.EntityUser)))
		}

		require.NoError(t, repo.Insert(ctx, nil, newEvent(model.SyncStatusPending, model.EntityOrganization)))
		require.NoError(t, repo.Insert(ctx, nil, newEvent(model.SyncStatusSkipped, model.EntityOrganization)))

		counts, err := repo.AggregateCounts(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, model.SyncCounts{Total: 5, Pending: 1, Failed: 3, Success: 0}, counts)

		events, total, err := repo.List(ctx, nil, model.SyncEventFilter{
			Status:     string(model.SyncStatusFailed),
			EntityType: model.EntityUser,
			Skip:       1,
			Limit:      1,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, events, 1)

		events, total, err = repo.List(ctx, nil, model.SyncEventFilter{Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, events, 5)

		for i := 1; i < len(events); i++ {
			assert.False(t, events[i].CreatedAt.After(events[i-1].CreatedAt))
		}
	})
}

func TestOrganizationRepositoryURLUnique(t *testing.T) {
	pool := setupPool(t)
	repo := NewOrganizationRepository(pool)
	ctx := context.Background()

	newOrg := func() *model.Organization {
		return &model.Organization{
			ID:                  uuid.New(),
			Name:                "Acme",
			URL:                 "acme.io",
			SubscriptionTier:    "starter",
			MaxStorageGB:        5,
			PrimaryColor:        "#3B82F6",
			Environment:         "production",
			MaxUsers:            10,
			MaxMonthlyProspects: 1000,
			MaxMonthlyEmails:    5000,
			IsActive:            true,
			Features:            map[string]any{},
			Settings:            map[string]any{},
			SecuritySettings:    map[string]any{},
		}
	}

	first, err := repo.Insert(ctx, nil, newOrg())
	require.NoError(t, err)

	_, err = repo.Insert(ctx, nil, newOrg())
	assert.ErrorIs(t, err, apperrors.ErrOrganizationURLExists)

	active, err := repo.SelectActive(ctx, nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	_, err = repo.SetActive(ctx, nil, first.ID, false)
	require.NoError(t, err)

	active, err = repo.SelectActive(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, active)
}

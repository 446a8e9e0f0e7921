package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/msg/outbox"
)

func TestCreateOrganizationRecordsSuccessfulSync(t *testing.T) {
	events := newEventRepo()
	downstream := newDownstream(t, http.StatusCreated)
	syncer := outbox.NewSyncer(zap.NewNop(), newTestDispatcher(t, downstream.URL, events))

	orgs := newOrgRepo()
	s := NewOrganizationService(zap.NewNop(), orgs, syncer)

	org, err := s.Create(context.Background(), model.OrganizationCreateRequest{Name: "Acme", URL: "acme.io"})
	require.NoError(t, err)

	history := events.sorted(false)
	require.Len(t, history, 1)

	event := history[0]
	assert.Equal(t, model.EntityOrganization, event.EntityType)
	assert.Equal(t, org.ID.String(), event.EntityID)
	assert.Equal(t, model.ActionCreate, event.Action)
	assert.Equal(t, model.SyncStatusSuccess, event.Status)
	assert.Equal(t, 0, event.RetryCount)
	assert.NotNil(t, event.CompletedAt)

	stored, err := orgs.SelectByID(context.Background(), nil, org.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestUpdateUserKeepsLocalChangeWhenDownstreamRefuses(t *testing.T) {
	closed := newDownstream(t, http.StatusOK)
	closed.Close()

	events := newEventRepo()
	l := zap.NewNop()
	dispatcher := outbox.NewDispatcher(l,
		outbox.Config{Enabled: true, BaseURL: closed.URL, MaxRetries: 3},
		outbox.NewClient(l, closed.URL, "secret", time.Second),
		outbox.NewRecorder(l, events, time.Second),
	)

	existing := fakeUser()
	users := newUserRepo(existing)
	s := newTestUserService(users, newOrgRepo(), outbox.NewSyncer(l, dispatcher))

	title := "Head of Sales"
	_, err := s.Update(context.Background(), existing.ID, model.UserUpdateRequest{JobTitle: &title})
	require.NoError(t, err)

	history := events.sorted(false)
	require.Len(t, history, 1)

	event := history[0]
	assert.Equal(t, model.EntityUser, event.EntityType)
	assert.Equal(t, model.ActionUpdate, event.Action)
	assert.Equal(t, model.SyncStatusFailed, event.Status)
	assert.Equal(t, 3, event.RetryCount)
	assert.Nil(t, event.CompletedAt)

	stored, err := users.SelectByID(context.Background(), nil, existing.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.JobTitle)
	assert.Equal(t, title, *stored.JobTitle)
}

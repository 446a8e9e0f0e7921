package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type captureDispatch struct {
	requests []Request
	result   bool
}

func (c *captureDispatch) Dispatch(_ context.Context, req Request) bool {
	c.requests = append(c.requests, req)

	return c.result
}

func decode(t *testing.T, payload []byte) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(payload, &m))

	return m
}

func TestEndpointFor(t *testing.T) {
	tests := map[string]string{
		model.EntityOrganization:     "/api/v1/internal/sync/organization",
		model.EntityUser:             "/api/v1/internal/sync/user",
		model.EntityUserOrganization: "/api/v1/internal/sync/user-organization",
		"invoice":                    "/api/v1/internal/sync/invoice",
	}

	for entityType, want := range tests {
		assert.Equal(t, want, EndpointFor(entityType), entityType)
	}
}

func TestSyncerOrganizationCreate(t *testing.T) {
	d := &captureDispatch{result: true}
	s := NewSyncer(zap.NewNop(), d)

	ok := s.OrganizationCreate(context.Background(), model.OrganizationSyncData{ID: "org-1", Name: "Acme", URL: "acme.io"})

	assert.True(t, ok)
	require.Len(t, d.requests, 1)

	req := d.requests[0]
	assert.Equal(t, "/api/v1/internal/sync/organization", req.Endpoint)
	assert.Equal(t, model.EntityOrganization, req.EntityType)
	assert.Equal(t, "org-1", req.EntityID)
	assert.Equal(t, model.ActionCreate, req.Action)

	body := decode(t, req.Payload)
	assert.Equal(t, "create", body["action"])
	assert.NotContains(t, body, "organization")

	data := body["data"].(map[string]any)
	assert.Equal(t, "acme.io", data["url"])
}

func TestSyncerRefActions(t *testing.T) {
	tests := []struct {
		name       string
		call       func(s *Syncer) bool
		entityType string
		action     string
	}{
		{"organization deactivate", func(s *Syncer) bool { return s.OrganizationDeactivate(context.Background(), "id-1") }, model.EntityOrganization, model.ActionDeactivate},
		{"organization reactivate", func(s *Syncer) bool { return s.OrganizationReactivate(context.Background(), "id-1") }, model.EntityOrganization, model.ActionReactivate},
		{"user deactivate", func(s *Syncer) bool { return s.UserDeactivate(context.Background(), "id-1") }, model.EntityUser, model.ActionDeactivate},
		{"user reactivate", func(s *Syncer) bool { return s.UserReactivate(context.Background(), "id-1") }, model.EntityUser, model.ActionReactivate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &captureDispatch{result: false}

			assert.False(t, tt.call(NewSyncer(zap.NewNop(), d)))
			require.Len(t, d.requests, 1)

			req := d.requests[0]
			assert.Equal(t, tt.entityType, req.EntityType)
			assert.Equal(t, tt.action, req.Action)
			assert.Equal(t, "id-1", req.EntityID)
			assert.JSONEq(t, `{"action":"`+tt.action+`","data":{"id":"id-1"}}`, string(req.Payload))
		})
	}
}

func TestSyncerUserCreateWithMembership(t *testing.T) {
	d := &captureDispatch{result: true}
	s := NewSyncer(zap.NewNop(), d)

	hash := "$2a$10$hash"
	role := model.RoleSalesRep
	verified := false

	user := model.UserSyncData{
		ID:                "user-1",
		Email:             "jane@acme.io",
		EncryptedPassword: &hash,
		FirstName:         "Jane",
		FullName:          "Jane",
		GlobalRole:        &role,
		IsActive:          true,
		EmailVerified:     &verified,
	}
	membership := &model.MembershipSyncData{ID: "m-1", UserID: "user-1", OrganizationID: "org-1", Role: role, IsActive: true, IsPrimary: true}

	require.True(t, s.UserCreate(context.Background(), user, membership))

	req := d.requests[0]
	assert.Equal(t, "/api/v1/internal/sync/user", req.Endpoint)
	assert.Equal(t, "user-1", req.EntityID)

	body := decode(t, req.Payload)
	data := body["data"].(map[string]any)
	assert.Equal(t, hash, data["encrypted_password"])

	org := body["organization"].(map[string]any)
	assert.Equal(t, "org-1", org["organization_id"])
	assert.Equal(t, true, org["is_primary"])
}

func TestSyncerUserUpdateOmitsCredentials(t *testing.T) {
	d := &captureDispatch{result: true}
	s := NewSyncer(zap.NewNop(), d)

	require.True(t, s.UserUpdate(context.Background(), model.UserSyncData{ID: "user-1", Email: "jane@acme.io"}))

	data := decode(t, d.requests[0].Payload)["data"].(map[string]any)
	assert.NotContains(t, data, "encrypted_password")
	assert.NotContains(t, data, "global_role")
}

func TestSyncerMissingIDIsUnknown(t *testing.T) {
	d := &captureDispatch{result: true}
	s := NewSyncer(zap.NewNop(), d)

	s.UserOrganization(context.Background(), model.MembershipSyncData{UserID: "u", OrganizationID: "o"}, "")

	req := d.requests[0]
	assert.Equal(t, model.UnknownEntityID, req.EntityID)
	assert.Equal(t, model.ActionCreate, req.Action)
	assert.Equal(t, "/api/v1/internal/sync/user-organization", req.Endpoint)
}

package outbox

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

const syncNamespace = "/api/v1/internal/sync/"

var endpoints = map[string]string{
	model.EntityOrganization:     syncNamespace + "organization",
	model.EntityUser:             syncNamespace + "user",
	model.EntityUserOrganization: syncNamespace + "user-organization",
}

// EndpointFor maps an entity type to its downstream sync endpoint.
func EndpointFor(entityType string) string {
	if endpoint, ok := endpoints[entityType]; ok {
		return endpoint
	}

	return syncNamespace + entityType
}

type Dispatch interface {
	Dispatch(ctx context.Context, req Request) bool
}

// Syncer exposes one operation per entity type and action. Each returns the
// dispatch outcome; callers never roll back local state on false.
type Syncer struct {
	l          *zap.Logger
	dispatcher Dispatch
}

func NewSyncer(l *zap.Logger, dispatcher Dispatch) *Syncer {
	return &Syncer{
		l:          l.With(zap.String("component", "syncer")),
		dispatcher: dispatcher,
	}
}

func (s *Syncer) OrganizationCreate(ctx context.Context, data model.OrganizationSyncData) bool {
	return s.send(ctx, model.EntityOrganization, model.ActionCreate, data.ID, model.SyncEnvelope{
		Action: model.ActionCreate,
		Data:   data,
	})
}

func (s *Syncer) OrganizationUpdate(ctx context.Context, data model.OrganizationSyncData) bool {
	return s.send(ctx, model.EntityOrganization, model.ActionUpdate, data.ID, model.SyncEnvelope{
		Action: model.ActionUpdate,
		Data:   data,
	})
}

func (s *Syncer) OrganizationDeactivate(ctx context.Context, id string) bool {
	return s.sendRef(ctx, model.EntityOrganization, model.ActionDeactivate, id)
}

func (s *Syncer) OrganizationReactivate(ctx context.Context, id string) bool {
	return s.sendRef(ctx, model.EntityOrganization, model.ActionReactivate, id)
}

// UserCreate sends the user and, when membership is set, its initial
// organization assignment in the same call.
func (s *Syncer) UserCreate(ctx context.Context, data model.UserSyncData, membership *model.MembershipSyncData) bool {
	envelope := model.SyncEnvelope{
		Action: model.ActionCreate,
		Data:   data,
	}

	if membership != nil {
		envelope.Organization = membership
	}

	return s.send(ctx, model.EntityUser, model.ActionCreate, data.ID, envelope)
}

func (s *Syncer) UserUpdate(ctx context.Context, data model.UserSyncData) bool {
	return s.send(ctx, model.EntityUser, model.ActionUpdate, data.ID, model.SyncEnvelope{
		Action: model.ActionUpdate,
		Data:   data,
	})
}

func (s *Syncer) UserDeactivate(ctx context.Context, id string) bool {
	return s.sendRef(ctx, model.EntityUser, model.ActionDeactivate, id)
}

func (s *Syncer) UserReactivate(ctx context.Context, id string) bool {
	return s.sendRef(ctx, model.EntityUser, model.ActionReactivate, id)
}

func (s *Syncer) UserOrganization(ctx context.Context, data model.MembershipSyncData, action string) bool {
	if action == "" {
		action = model.ActionCreate
	}

	return s.send(ctx, model.EntityUserOrganization, action, data.ID, model.SyncEnvelope{
		Action: action,
		Data:   data,
	})
}

func (s *Syncer) sendRef(ctx context.Context, entityType, action, id string) bool {
	return s.send(ctx, entityType, action, id, model.SyncEnvelope{
		Action: action,
		Data:   model.EntityRef{ID: id},
	})
}

func (s *Syncer) send(ctx context.Context, entityType, action, entityID string, envelope model.SyncEnvelope) bool {
	if entityID == "" {
		entityID = model.UnknownEntityID
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		s.l.Error("Failed to marshal sync payload",
			zap.Error(err),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.String("action", action),
		)

		return false
	}

	return s.dispatcher.Dispatch(ctx, Request{
		Endpoint:   EndpointFor(entityType),
		Payload:    payload,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
	})
}

package service

import (
	"context"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// Syncer propagates committed entity changes downstream. A false result is
// recorded in the event store; local changes are never rolled back.
type Syncer interface {
	OrganizationCreate(ctx context.Context, data model.OrganizationSyncData) bool
	OrganizationUpdate(ctx context.Context, data model.OrganizationSyncData) bool
	OrganizationDeactivate(ctx context.Context, id string) bool
	OrganizationReactivate(ctx context.Context, id string) bool

	UserCreate(ctx context.Context, data model.UserSyncData, membership *model.MembershipSyncData) bool
	UserUpdate(ctx context.Context, data model.UserSyncData) bool
	UserDeactivate(ctx context.Context, id string) bool
	UserReactivate(ctx context.Context, id string) bool

	UserOrganization(ctx context.Context, data model.MembershipSyncData, action string) bool
}

func clampListLimit(limit *int) int {
	if limit == nil {
		return DefaultListLimit
	}

	switch {
	case *limit < 1:
		return 1
	case *limit > MaxListLimit:
		return MaxListLimit
	default:
		return *limit
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type UserOrganization struct {
	ID             uuid.UUID `db:"id"              json:"id"`
	UserID         uuid.UUID `db:"user_id"         json:"user_id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Role           string    `db:"role"            json:"role"`
	IsActive       bool      `db:"is_active"       json:"is_active"`
	IsPrimary      bool      `db:"is_primary"      json:"is_primary"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}

type MembershipSyncData struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	IsActive       bool   `json:"is_active"`
	IsPrimary      bool   `json:"is_primary"`
}

func (m *UserOrganization) SyncData() MembershipSyncData {
	return MembershipSyncData{
		ID:             m.ID.String(),
		UserID:         m.UserID.String(),
		OrganizationID: m.OrganizationID.String(),
		Role:           m.Role,
		IsActive:       m.IsActive,
		IsPrimary:      m.IsPrimary,
	}
}

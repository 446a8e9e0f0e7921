package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "pending"
	SyncStatusRetrying   SyncStatus = "retrying"
	SyncStatusSuccess    SyncStatus = "success"
	SyncStatusFailed     SyncStatus = "failed"
	SyncStatusSkipped    SyncStatus = "skipped"
	SyncStatusSuperseded SyncStatus = "superseded"
)

const (
	EntityOrganization     = "organization"
	EntityUser             = "user"
	EntityUserOrganization = "user_organization"
)

const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDeactivate = "deactivate"
	ActionReactivate = "reactivate"
)

// UnknownEntityID is recorded when the payload carries no id.
const UnknownEntityID = "unknown"

const (
	MaxResponseBodyLength = 5000
	MaxErrorMessageLength = 2000
)

// SyncEvent is one dispatch cycle towards the downstream service.
type SyncEvent struct {
	ID                 uuid.UUID       `db:"id"                   json:"id"`
	EntityType         string          `db:"entity_type"          json:"entity_type"`
	EntityID           string          `db:"entity_id"            json:"entity_id"`
	Action             string          `db:"action"               json:"action"`
	Status             SyncStatus      `db:"status"               json:"status"`
	RetryCount         int             `db:"retry_count"          json:"retry_count"`
	MaxRetries         int             `db:"max_retries"          json:"max_retries"`
	Payload            json.RawMessage `db:"payload"              json:"payload"`
	ResponseStatusCode *int            `db:"response_status_code" json:"response_status_code"`
	ResponseBody       *string         `db:"response_body"        json:"response_body"`
	ErrorMessage       *string         `db:"error_message"        json:"error_message"`
	CreatedAt          time.Time       `db:"created_at"           json:"created_at"`
	LastAttemptedAt    *time.Time      `db:"last_attempted_at"    json:"last_attempted_at"`
	CompletedAt        *time.Time      `db:"completed_at"         json:"completed_at"`
}

// SyncEventSummary is the listing view of a SyncEvent. Payloads carry
// credentials such as password hashes and never leave the store through it.
type SyncEventSummary struct {
	ID                 uuid.UUID  `json:"id"`
	EntityType         string     `json:"entity_type"`
	EntityID           string     `json:"entity_id"`
	Action             string     `json:"action"`
	Status             SyncStatus `json:"status"`
	RetryCount         int        `json:"retry_count"`
	ResponseStatusCode *int       `json:"response_status_code"`
	ErrorMessage       *string    `json:"error_message"`
	CreatedAt          time.Time  `json:"created_at"`
	LastAttemptedAt    *time.Time `json:"last_attempted_at"`
	CompletedAt        *time.Time `json:"completed_at"`
}

func (e *SyncEvent) Summary() SyncEventSummary {
	return SyncEventSummary{
		ID:                 e.ID,
		EntityType:         e.EntityType,
		EntityID:           e.EntityID,
		Action:             e.Action,
		Status:             e.Status,
		RetryCount:         e.RetryCount,
		ResponseStatusCode: e.ResponseStatusCode,
		ErrorMessage:       e.ErrorMessage,
		CreatedAt:          e.CreatedAt,
		LastAttemptedAt:    e.LastAttemptedAt,
		CompletedAt:        e.CompletedAt,
	}
}

// SyncEventUpdate changes the status and every non-nil field.
type SyncEventUpdate struct {
	Status             SyncStatus
	ResponseStatusCode *int
	ResponseBody       *string
	ErrorMessage       *string
	RetryCount         *int
}

type SyncEventFilter struct {
	Status     string
	EntityType string
	Skip       int
	Limit      int
}

type SyncEventQueryParams struct {
	Status       string `form:"status"`
	StatusFilter string `form:"status_filter"`
	EntityType   string `form:"entity_type"`
	Skip         int    `form:"skip"  binding:"min=0"`
	Limit        *int   `form:"limit"`
}

type SyncEventPage struct {
	Events []SyncEventSummary `json:"events"`
	Total  int                `json:"total"`
	Skip   int                `json:"skip"`
	Limit  int                `json:"limit"`
}

type SyncCounts struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
	Success int `json:"success"`
}

type SyncStatusSummary struct {
	Enabled     bool   `json:"enabled"`
	TargetURL   string `json:"target_url"`
	TotalEvents int    `json:"total_events"`
	Pending     int    `json:"pending"`
	Failed      int    `json:"failed"`
	Success     int    `json:"success"`
}

type RetryFailedResult struct {
	Retried   int `json:"retried"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type FullSyncResult struct {
	Organizations     int      `json:"organizations"`
	Users             int      `json:"users"`
	UserOrganizations int      `json:"user_organizations"`
	Errors            []string `json:"errors"`
}

type FullSyncResponse struct {
	Success bool           `json:"success"`
	Synced  FullSyncResult `json:"synced"`
}

// SyncEnvelope is the body posted downstream.
type SyncEnvelope struct {
	Action       string `json:"action"`
	Data         any    `json:"data"`
	Organization any    `json:"organization,omitempty"`
}

// EntityRef is the data of deactivate and reactivate envelopes.
type EntityRef struct {
	ID string `json:"id"`
}

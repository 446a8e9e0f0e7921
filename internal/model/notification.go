package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const NotificationTargetAllUsers = "all_users"

var NotificationTypes = []string{
	"info",
	"warning",
	"success",
	"error",
	"system_update",
	"maintenance",
	"feature_announcement",
	"security_alert",
}

func IsValidNotificationType(t string) bool {
	return slices.Contains(NotificationTypes, t)
}

type Notification struct {
	ID         uuid.UUID      `db:"id"          json:"id"`
	Title      string         `db:"title"       json:"title"`
	Message    string         `db:"message"     json:"message"`
	Type       string         `db:"type"        json:"type"`
	Target     string         `db:"target"      json:"target"`
	TargetSpec map[string]any `db:"target_spec" json:"target_spec"`
	Priority   int            `db:"priority"    json:"priority"`
	IsActive   bool           `db:"is_active"   json:"is_active"`
	CreatedBy  *uuid.UUID     `db:"created_by"  json:"created_by"`
	ExpiresAt  *time.Time     `db:"expires_at"  json:"expires_at"`
	CreatedAt  time.Time      `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"  json:"updated_at"`
}

type NotificationCreateRequest struct {
	Title     string     `json:"title"      binding:"required,max=255"`
	Message   string     `json:"message"    binding:"required"`
	Type      string     `json:"type"       binding:"required"`
	Priority  *int       `json:"priority"   binding:"omitempty,min=1"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type NotificationUpdateRequest struct {
	Title     *string    `json:"title"      binding:"omitempty,max=255"`
	Message   *string    `json:"message"`
	Type      *string    `json:"type"`
	Priority  *int       `json:"priority"   binding:"omitempty,min=1"`
	IsActive  *bool      `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type NotificationQueryParams struct {
	Skip     int    `form:"skip"      binding:"min=0"`
	Limit    *int   `form:"limit"`
	Type     string `form:"type"`
	IsActive *bool  `form:"is_active"`
}

type NotificationFilter struct {
	Skip     int
	Limit    int
	Type     string
	IsActive *bool
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
	Skip          int            `json:"skip"`
	Limit         int            `json:"limit"`
}

type NotificationStats struct {
	TotalNotifications  int `json:"total_notifications"`
	ActiveNotifications int `json:"active_notifications"`
	RecentNotifications int `json:"recent_notifications"`
}

type NotificationIDPathParam struct {
	ID string `uri:"notification_id" binding:"required,uuid"`
}

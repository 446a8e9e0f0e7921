package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrganizationStatusActive   = "active"
	OrganizationStatusInactive = "inactive"
)

type Organization struct {
	ID                  uuid.UUID      `db:"id"                    json:"id"`
	Name                string         `db:"name"                  json:"name"`
	URL                 string         `db:"url"                   json:"url"`
	SubscriptionTier    string         `db:"subscription_tier"     json:"subscription_tier"`
	MaxStorageGB        int            `db:"max_storage_gb"        json:"max_storage_gb"`
	BillingEmail        *string        `db:"billing_email"         json:"billing_email"`
	SupportEmail        *string        `db:"support_email"         json:"support_email"`
	Phone               *string        `db:"phone"                 json:"phone"`
	CompanyAddress      *string        `db:"company_address"       json:"company_address"`
	PrimaryColor        string         `db:"primary_color"         json:"primary_color"`
	Environment         string         `db:"environment"           json:"environment"`
	Description         *string        `db:"description"           json:"description"`
	MaxUsers            int            `db:"max_users"             json:"max_users"`
	MaxMonthlyProspects int            `db:"max_monthly_prospects" json:"max_monthly_prospects"`
	MaxMonthlyEmails    int            `db:"max_monthly_emails"    json:"max_monthly_emails"`
	IsActive            bool           `db:"is_active"             json:"is_active"`
	Features            map[string]any `db:"features"              json:"features"`
	Settings            map[string]any `db:"settings"              json:"settings"`
	SecuritySettings    map[string]any `db:"security_settings"     json:"security_settings"`
	CreatedAt           time.Time      `db:"created_at"            json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"            json:"updated_at"`
}

type OrganizationCreateRequest struct {
	Name                string  `json:"name"                  binding:"required,max=255"`
	URL                 string  `json:"url"                   binding:"required,max=255"`
	SubscriptionTier    string  `json:"subscription_tier"`
	MaxStorageGB        *int    `json:"max_storage_gb"        binding:"omitempty,min=0"`
	BillingEmail        *string `json:"billing_email"         binding:"omitempty,email"`
	SupportEmail        *string `json:"support_email"         binding:"omitempty,email"`
	Phone               *string `json:"phone"`
	CompanyAddress      *string `json:"company_address"`
	PrimaryColor        string  `json:"primary_color"`
	Environment         string  `json:"environment"`
	Description         *string `json:"description"`
	MaxUsers            *int    `json:"max_users"             binding:"omitempty,min=0"`
	MaxMonthlyProspects *int    `json:"max_monthly_prospects" binding:"omitempty,min=0"`
	MaxMonthlyEmails    *int    `json:"max_monthly_emails"    binding:"omitempty,min=0"`
}

// OrganizationUpdateRequest applies only the fields that are present.
type OrganizationUpdateRequest struct {
	Name                *string         `json:"name"                  binding:"omitempty,max=255"`
	URL                 *string         `json:"url"                   binding:"omitempty,max=255"`
	SubscriptionTier    *string         `json:"subscription_tier"`
	MaxStorageGB        *int            `json:"max_storage_gb"        binding:"omitempty,min=0"`
	BillingEmail        *string         `json:"billing_email"         binding:"omitempty,email"`
	SupportEmail        *string         `json:"support_email"         binding:"omitempty,email"`
	Phone               *string         `json:"phone"`
	CompanyAddress      *string         `json:"company_address"`
	PrimaryColor        *string         `json:"primary_color"`
	Environment         *string         `json:"environment"`
	Description         *string         `json:"description"`
	MaxUsers            *int            `json:"max_users"             binding:"omitempty,min=0"`
	MaxMonthlyProspects *int            `json:"max_monthly_prospects" binding:"omitempty,min=0"`
	MaxMonthlyEmails    *int            `json:"max_monthly_emails"    binding:"omitempty,min=0"`
	IsActive            *bool           `json:"is_active"`
	Features            *map[string]any `json:"features"`
	Settings            *map[string]any `json:"settings"`
	SecuritySettings    *map[string]any `json:"security_settings"`
}

type OrganizationQueryParams struct {
	Skip   int    `form:"skip"   binding:"min=0"`
	Limit  *int   `form:"limit"`
	Search string `form:"search"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

type OrganizationFilter struct {
	Skip   int
	Limit  int
	Search string
	Status string
}

type OrganizationPage struct {
	Organizations []Organization `json:"organizations"`
	Total         int            `json:"total"`
	Skip          int            `json:"skip"`
	Limit         int            `json:"limit"`
}

type OrganizationIDPathParam struct {
	ID string `uri:"organization_id" binding:"required,uuid"`
}

// OrganizationSyncData is the organization representation sent downstream.
type OrganizationSyncData struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	URL                 string         `json:"url"`
	SubscriptionTier    string         `json:"subscription_tier"`
	MaxStorageGB        int            `json:"max_storage_gb"`
	BillingEmail        *string        `json:"billing_email"`
	SupportEmail        *string        `json:"support_email"`
	Phone               *string        `json:"phone"`
	CompanyAddress      *string        `json:"company_address"`
	PrimaryColor        string         `json:"primary_color"`
	Environment         string         `json:"environment"`
	Description         *string        `json:"description"`
	MaxUsers            int            `json:"max_users"`
	MaxMonthlyProspects int            `json:"max_monthly_prospects"`
	MaxMonthlyEmails    int            `json:"max_monthly_emails"`
	IsActive            bool           `json:"is_active"`
	Features            map[string]any `json:"features"`
	Settings            map[string]any `json:"settings"`
	SecuritySettings    map[string]any `json:"security_settings"`
}

func (o *Organization) SyncData() OrganizationSyncData {
	return OrganizationSyncData{
		ID:                  o.ID.String(),
		Name:                o.Name,
		URL:                 o.URL,
		SubscriptionTier:    o.SubscriptionTier,
		MaxStorageGB:        o.MaxStorageGB,
		BillingEmail:        o.BillingEmail,
		SupportEmail:        o.SupportEmail,
		Phone:               o.Phone,
		CompanyAddress:      o.CompanyAddress,
		PrimaryColor:        o.PrimaryColor,
		Environment:         o.Environment,
		Description:         o.Description,
		MaxUsers:            o.MaxUsers,
		MaxMonthlyProspects: o.MaxMonthlyProspects,
		MaxMonthlyEmails:    o.MaxMonthlyEmails,
		IsActive:            o.IsActive,
		Features:            orEmpty(o.Features),
		Settings:            orEmpty(o.Settings),
		SecuritySettings:    orEmpty(o.SecuritySettings),
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}

func DefaultOrganizationFeatures() map[string]any {
	return map[string]any{
		"sso_auth":            false,
		"ai_scoring":          true,
		"api_access":          false,
		"audit_logs":          true,
		"data_export":         true,
		"white_label":         false,
		"web_scraping":        true,
		"email_outreach":      true,
		"multi_language":      false,
		"priority_support":    false,
		"advanced_analytics":  false,
		"custom_integrations": false,
	}
}

func DefaultOrganizationSettings() map[string]any {
	return map[string]any{
		"currency":               "USD",
		"timezone":               "UTC",
		"date_format":            "MM/DD/YYYY",
		"auto_follow_up":         true,
		"email_signature":        "",
		"lead_scoring_enabled":   true,
		"default_email_template": "professional",
		"notification_preferences": map[string]any{
			"deal_alerts":         true,
			"weekly_reports":      true,
			"email_notifications": true,
		},
	}
}

func DefaultOrganizationSecuritySettings() map[string]any {
	return map[string]any{
		"ip_whitelist":        []any{},
		"audit_logging":       true,
		"password_policy":     "strong",
		"session_timeout":     480,
		"two_factor_required": false,
	}
}

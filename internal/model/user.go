package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleSalesRep = "sales_rep"
	RoleAdmin    = "admin"
)

const MinPasswordLength = 8

type User struct {
	ID                uuid.UUID `db:"id"                 json:"id"`
	Email             string    `db:"email"              json:"email"`
	EncryptedPassword string    `db:"encrypted_password" json:"-"`
	FirstName         string    `db:"first_name"         json:"first_name"`
	LastName          *string   `db:"last_name"          json:"last_name"`
	FullName          *string   `db:"full_name"          json:"-"`
	Phone             *string   `db:"phone"              json:"phone"`
	JobTitle          *string   `db:"job_title"          json:"job_title"`
	Department        *string   `db:"department"         json:"department"`
	GlobalRole        string    `db:"global_role"        json:"global_role"`
	IsActive          bool      `db:"is_active"          json:"is_active"`
	EmailVerified     bool      `db:"email_verified"     json:"email_verified"`
	CreatedAt         time.Time `db:"created_at"         json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"         json:"updated_at"`
}

// DisplayName falls back to "first last" when full_name is unset.
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}

	last := ""
	if u.LastName != nil {
		last = *u.LastName
	}

	return strings.TrimSpace(u.FirstName + " " + last)
}

// UserResponse is the admin API view of a user.
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      *string   `json:"last_name"`
	FullName      string    `json:"full_name"`
	Phone         *string   `json:"phone,omitempty"`
	JobTitle      *string   `json:"job_title,omitempty"`
	Department    *string   `json:"department,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) Response() UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		FullName:      u.DisplayName(),
		Phone:         u.Phone,
		JobTitle:      u.JobTitle,
		Department:    u.Department,
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
	}
}

type UserCreateRequest struct {
	Email           string  `json:"email"            binding:"required,email"`
	FirstName       string  `json:"first_name"       binding:"required"`
	LastName        *string `json:"last_name"`
	Phone           *string `json:"phone"`
	JobTitle        *string `json:"job_title"`
	Department      *string `json:"department"`
	Password        string  `json:"password"         binding:"required"`
	ConfirmPassword string  `json:"confirm_password" binding:"required"`
	OrganizationID  string  `json:"organization_id"  binding:"required,uuid"`
	Role            string  `json:"role"`
}

// UserUpdateRequest applies only the fields that are present.
type UserUpdateRequest struct {
	Email      *string `json:"email"       binding:"omitempty,email"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	JobTitle   *string `json:"job_title"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
}

type UserQueryParams struct {
	Skip           int    `form:"skip"            binding:"min=0"`
	Limit          *int   `form:"limit"`
	Search         string `form:"search"`
	OrganizationID string `form:"organization_id" binding:"omitempty,uuid"`
}

type UserFilter struct {
	Skip           int
	Limit          int
	Search         string
	OrganizationID *uuid.UUID
	ExcludeEmails  []string
}

type UserPage struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

type UserIDPathParam struct {
	ID string `uri:"user_id" binding:"required,uuid"`
}

// UserSyncData is the user representation sent downstream. Credential and role
// fields are only populated for create.
type UserSyncData struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	EncryptedPassword *string `json:"encrypted_password,omitempty"`
	FirstName         string  `json:"first_name"`
	LastName          *string `json:"last_name"`
	FullName          string  `json:"full_name"`
	Phone             *string `json:"phone"`
	JobTitle          *string `json:"job_title"`
	Department        *string `json:"department"`
	GlobalRole        *string `json:"global_role,omitempty"`
	IsActive          bool    `json:"is_active"`
	EmailVerified     *bool   `json:"email_verified,omitempty"`
}

// CreateSyncData includes the password hash and role.
func (u *User) CreateSyncData() UserSyncData {
	data := u.UpdateSyncData()
	data.EncryptedPassword = &u.EncryptedPassword
	data.GlobalRole = &u.GlobalRole
	data.EmailVerified = &u.EmailVerified

	return data
}

func (u *User) UpdateSyncData() UserSyncData {
	return UserSyncData{
		ID:         u.ID.String(),
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.DisplayName(),
		Phone:      u.Phone,
		JobTitle:   u.JobTitle,
		Department: u.Department,
		IsActive:   u.IsActive,
	}
}

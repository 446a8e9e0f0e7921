package apperrors

import (
	"errors"
)

var (
	ErrShutdown = errors.New("shutdown error")

	ErrInvalidConfig = errors.New("invalid config")

	ErrUserAlreadyExists     = errors.New("user with this email already exists")
	ErrUserDoesNotExist      = errors.New("user does not exist")
	ErrUserAlreadyActive     = errors.New("user is already active")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch      = errors.New("passwords do not match")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAdminAccessDenied     = errors.New("access denied: admin privileges required")
	ErrRefreshTokenExpired   = errors.New("refresh token expired")
	ErrMembershipExists      = errors.New("user is already a member of this organization")
	ErrOrganizationInactive  = errors.New("organization not found or inactive")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrOrganizationURLExists = errors.New("organization with this URL already exists")
	ErrOrganizationActive    = errors.New("organization is already active")

	ErrNotificationNotFound    = errors.New("notification not found")
	ErrInvalidNotificationType = errors.New("invalid notification type")

	ErrSyncEventNotFound       = errors.New("sync event not found")
	ErrSyncOperationInProgress = errors.New("another sync operation is already running")

	ErrContextValueDoesNotExist = errors.New("context value does not exist")
	ErrContextValueInvalidType  = errors.New("invalid context value type")
)

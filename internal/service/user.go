package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
)

type UserRepository interface {
	Pool() *pgxpool.Pool

	Insert(ctx context.Context, ext repository.RepoExtension, user *model.User) (*model.User, error)
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.User, error)
	SelectByEmail(ctx context.Context, ext repository.RepoExtension, email string) (*model.User, error)
	List(ctx context.Context, ext repository.RepoExtension, filter model.UserFilter) ([]model.User, int, error)
	Update(ctx context.Context, ext repository.RepoExtension, user *model.User) (*model.User, error)
	SetActive(ctx context.Context, ext repository.RepoExtension, id uuid.UUID, active bool) (*model.User, error)
}

type MembershipRepository interface {
	Insert(ctx context.Context, ext repository.RepoExtension, m *model.UserOrganization) (*model.UserOrganization, error)
}

type OrganizationReader interface {
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Organization, error)
}

type UserService struct {
	log            *zap.Logger
	userRepo       UserRepository
	membershipRepo MembershipRepository
	orgRepo        OrganizationReader
	syncer         Syncer
	adminEmails    []string
}

func NewUserService(
	log *zap.Logger,
	userRepo UserRepository,
	membershipRepo MembershipRepository,
	orgRepo OrganizationReader,
	syncer Syncer,
	adminEmails []string,
) *UserService {
	return &UserService{
		log:            log,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		orgRepo:        orgRepo,
		syncer:         syncer,
		adminEmails:    adminEmails,
	}
}

// List never returns the configured admin accounts.
func (s *UserService) List(ctx context.Context, params model.UserQueryParams) (*model.UserPage, error) {
	filter := model.UserFilter{
		Skip:          max(params.Skip, 0),
		Limit:         clampListLimit(params.Limit),
		Search:        params.Search,
		ExcludeEmails: s.adminEmails,
	}

	if params.OrganizationID != "" {
		orgID, err := uuid.Parse(params.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse organization id: %w", err)
		}

		filter.OrganizationID = &orgID
	}

	users, total, err := s.userRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	page := &model.UserPage{
		Users: make([]model.UserResponse, 0, len(users)),
		Total: total,
		Skip:  filter.Skip,
		Limit: filter.Limit,
	}

	for i := range users {
		page.Users = append(page.Users, users[i].Response())
	}

	return page, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	resp := user.Response()

	return &resp, nil
}

// Create inserts the user and its primary membership in one transaction and
// syncs both downstream in a single user.create call.
func (s *UserService) Create(ctx context.Context, req model.UserCreateRequest) (*model.UserResponse, error) {
	if err := validatePassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse organization id: %w", err)
	}

	org, err := s.orgRepo.SelectByID(ctx, nil, orgID)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrganizationNotFound) {
			return nil, apperrors.ErrOrganizationInactive
		}

		return nil, fmt.Errorf("failed to select organization: %w", err)
	}

	if !org.IsActive {
		return nil, apperrors.ErrOrganizationInactive
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password hash: %w", err)
	}

	role := orDefault(req.Role, model.RoleSalesRep)

	user := &model.User{
		ID:                uuid.New(),
		Email:             email,
		EncryptedPassword: string(passHash),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		JobTitle:          req.JobTitle,
		Department:        req.Department,
		GlobalRole:        role,
		IsActive:          true,
	}
	fullName := user.DisplayName()
	user.FullName = &fullName

	membership := &model.UserOrganization{
		ID:             uuid.New(),
		UserID:         user.ID,
		OrganizationID: org.ID,
		Role:           role,
		IsActive:       true,
		IsPrimary:      true,
	}

	tx, err := s.userRepo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	user, err = s.userRepo.Insert(ctx, tx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	membership, err = s.membershipRepo.Insert(ctx, tx, membership)
	if err != nil {
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	membershipData := membership.SyncData()
	if !s.syncer.UserCreate(ctx, user.CreateSyncData(), &membershipData) {
		s.log.Warn("user created locally but sync failed", zap.String("user_id", user.ID.String()))
	}

	resp := user.Response()

	return &resp, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req model.UserUpdateRequest) (*model.UserResponse, error) {
	user, err := s.userRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}

			user.Email = email
		}
	}

	nameChanged := req.FirstName != nil || req.LastName != nil

	setIfPresent(&user.FirstName, req.FirstName)
	setIfPresent(&user.IsActive, req.IsActive)

	if req.LastName != nil {
		user.LastName = req.LastName
	}

	if req.Phone != nil {
		user.Phone = req.Phone
	}

	if req.JobTitle != nil {
		user.JobTitle = req.JobTitle
	}

	if req.Department != nil {
		user.Department = req.Department
	}

	if nameChanged {
		user.FullName = nil
		fullName := user.DisplayName()
		user.FullName = &fullName
	}

	user, err = s.userRepo.Update(ctx, nil, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if !s.syncer.UserUpdate(ctx, user.UpdateSyncData()) {
		s.log.Warn("user updated locally but sync failed", zap.String("user_id", user.ID.String()))
	}

	resp := user.Response()

	return &resp, nil
}

// Deactivate soft-deletes the user.
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.userRepo.SetActive(ctx, nil, id, false); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	if !s.syncer.UserDeactivate(ctx, id.String()) {
		s.log.Warn("user deactivated locally but sync failed", zap.String("user_id", id.String()))
	}

	return nil
}

func (s *UserService) Reactivate(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	if user.IsActive {
		return nil, apperrors.ErrUserAlreadyActive
	}

	user, err = s.userRepo.SetActive(ctx, nil, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to reactivate user: %w", err)
	}

	if !s.syncer.UserReactivate(ctx, id.String()) {
		s.log.Warn("user reactivated locally but sync failed", zap.String("user_id", id.String()))
	}

	resp := user.Response()

	return &resp, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.userRepo.SelectByEmail(ctx, nil, email)
	switch {
	case err == nil:
		return apperrors.ErrUserAlreadyExists
	case errors.Is(err, apperrors.ErrUserDoesNotExist):
		return nil
	default:
		return fmt.Errorf("failed to select user: %w", err)
	}
}

func validatePassword(password, confirm string) error {
	if len([]rune(password)) < model.MinPasswordLength {
		return apperrors.ErrPasswordTooShort
	}

	if password != confirm {
		return apperrors.ErrPasswordMismatch
	}

	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
)

const (
	defaultSubscriptionTier    = "starter"
	defaultMaxStorageGB        = 5
	defaultPrimaryColor        = "#3B82F6"
	defaultEnvironment         = "production"
	defaultMaxUsers            = 10
	defaultMaxMonthlyProspects = 1000
	defaultMaxMonthlyEmails    = 5000
)

type OrganizationRepository interface {
	Insert(ctx context.Context, ext repository.RepoExtension, org *model.Organization) (*model.Organization, error)
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Organization, error)
	List(ctx context.Context, ext repository.RepoExtension, filter model.OrganizationFilter) ([]model.Organization, int, error)
	Update(ctx context.Context, ext repository.RepoExtension, org *model.Organization) (*model.Organization, error)
	SetActive(ctx context.Context, ext repository.RepoExtension, id uuid.UUID, active bool) (*model.Organization, error)
}

type OrganizationService struct {
	log     *zap.Logger
	orgRepo OrganizationRepository
	syncer  Syncer
}

func NewOrganizationService(log *zap.Logger, orgRepo OrganizationRepository, syncer Syncer) *OrganizationService {
	return &OrganizationService{
		log:     log,
		orgRepo: orgRepo,
		syncer:  syncer,
	}
}

func (s *OrganizationService) List(ctx context.Context, params model.OrganizationQueryParams) (*model.OrganizationPage, error) {
	filter := model.OrganizationFilter{
		Skip:   max(params.Skip, 0),
		Limit:  clampListLimit(params.Limit),
		Search: params.Search,
		Status: params.Status,
	}

	orgs, total, err := s.orgRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	return &model.OrganizationPage{
		Organizations: orgs,
		Total:         total,
		Skip:          filter.Skip,
		Limit:         filter.Limit,
	}, nil
}

func (s *OrganizationService) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	org, err := s.orgRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select organization: %w", err)
	}

	return org, nil
}

func (s *OrganizationService) Create(ctx context.Context, req model.OrganizationCreateRequest) (*model.Organization, error) {
	org := &model.Organization{
		ID:                  uuid.New(),
		Name:                req.Name,
		URL:                 req.URL,
		SubscriptionTier:    orDefault(req.SubscriptionTier, defaultSubscriptionTier),
		MaxStorageGB:        intOrDefault(req.MaxStorageGB, defaultMaxStorageGB),
		BillingEmail:        req.BillingEmail,
		SupportEmail:        req.SupportEmail,
		Phone:               req.Phone,
		CompanyAddress:      req.CompanyAddress,
		PrimaryColor:        orDefault(req.PrimaryColor, defaultPrimaryColor),
		Environment:         orDefault(req.Environment, defaultEnvironment),
		Description:         req.Description,
		MaxUsers:            intOrDefault(req.MaxUsers, defaultMaxUsers),
		MaxMonthlyProspects: intOrDefault(req.MaxMonthlyProspects, defaultMaxMonthlyProspects),
		MaxMonthlyEmails:    intOrDefault(req.MaxMonthlyEmails, defaultMaxMonthlyEmails),
		IsActive:            true,
		Features:            model.DefaultOrganizationFeatures(),
		Settings:            model.DefaultOrganizationSettings(),
		SecuritySettings:    model.DefaultOrganizationSecuritySettings(),
	}

	org, err := s.orgRepo.Insert(ctx, nil, org)
	if err != nil {
		return nil, fmt.Errorf("failed to insert organization: %w", err)
	}

	if !s.syncer.OrganizationCreate(ctx, org.SyncData()) {
		s.log.Warn("organization created locally but sync failed", zap.String("organization_id", org.ID.String()))
	}

	return org, nil
}

func (s *OrganizationService) Update(ctx context.Context, id uuid.UUID, req model.OrganizationUpdateRequest) (*model.Organization, error) {
	org, err := s.orgRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select organization: %w", err)
	}

	applyOrganizationUpdate(org, req)

	org, err = s.orgRepo.Update(ctx, nil, org)
	if err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	if !s.syncer.OrganizationUpdate(ctx, org.SyncData()) {
		s.log.Warn("organization updated locally but sync failed", zap.String("organization_id", org.ID.String()))
	}

	return org, nil
}

// Deactivate soft-deletes the organization.
func (s *OrganizationService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.orgRepo.SetActive(ctx, nil, id, false); err != nil {
		return fmt.Errorf("failed to deactivate organization: %w", err)
	}

	if !s.syncer.OrganizationDeactivate(ctx, id.String()) {
		s.log.Warn("organization deactivated locally but sync failed", zap.String("organization_id", id.String()))
	}

	return nil
}

func (s *OrganizationService) Reactivate(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	org, err := s.orgRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select organization: %w", err)
	}

	if org.IsActive {
		return nil, apperrors.ErrOrganizationActive
	}

	org, err = s.orgRepo.SetActive(ctx, nil, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to reactivate organization: %w", err)
	}

	if !s.syncer.OrganizationReactivate(ctx, id.String()) {
		s.log.Warn("organization reactivated locally but sync failed", zap.String("organization_id", id.String()))
	}

	return org, nil
}

func applyOrganizationUpdate(org *model.Organization, req model.OrganizationUpdateRequest) {
	setIfPresent(&org.Name, req.Name)
	setIfPresent(&org.URL, req.URL)
	setIfPresent(&org.SubscriptionTier, req.SubscriptionTier)
	setIfPresent(&org.MaxStorageGB, req.MaxStorageGB)
	setIfPresent(&org.PrimaryColor, req.PrimaryColor)
	setIfPresent(&org.Environment, req.Environment)
	setIfPresent(&org.MaxUsers, req.MaxUsers)
	setIfPresent(&org.MaxMonthlyProspects, req.MaxMonthlyProspects)
	setIfPresent(&org.MaxMonthlyEmails, req.MaxMonthlyEmails)
	setIfPresent(&org.IsActive, req.IsActive)
	setIfPresent(&org.Features, req.Features)
	setIfPresent(&org.Settings, req.Settings)
	setIfPresent(&org.SecuritySettings, req.SecuritySettings)

	if req.BillingEmail != nil {
		org.BillingEmail = req.BillingEmail
	}

	if req.SupportEmail != nil {
		org.SupportEmail = req.SupportEmail
	}

	if req.Phone != nil {
		org.Phone = req.Phone
	}

	if req.CompanyAddress != nil {
		org.CompanyAddress = req.CompanyAddress
	}

	if req.Description != nil {
		org.Description = req.Description
	}
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}

	return *v
}

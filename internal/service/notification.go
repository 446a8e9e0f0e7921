package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
)

const recentNotificationsWindow = 7 * 24 * time.Hour

type NotificationRepository interface {
	Insert(ctx context.Context, ext repository.RepoExtension, n *model.Notification) (*model.Notification, error)
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Notification, error)
	List(ctx context.Context, ext repository.RepoExtension, filter model.NotificationFilter) ([]model.Notification, int, error)
	Update(ctx context.Context, ext repository.RepoExtension, n *model.Notification) (*model.Notification, error)
	Deactivate(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
	Stats(ctx context.Context, ext repository.RepoExtension, since time.Time) (model.NotificationStats, error)
}

type NotificationService struct {
	log              *zap.Logger
	notificationRepo NotificationRepository
	now              func() time.Time
}

func NewNotificationService(log *zap.Logger, notificationRepo NotificationRepository) *NotificationService {
	return &NotificationService{
		log:              log,
		notificationRepo: notificationRepo,
		now:              time.Now,
	}
}

func (s *NotificationService) List(ctx context.Context, params model.NotificationQueryParams) (*model.NotificationPage, error) {
	filter := model.NotificationFilter{
		Skip:     max(params.Skip, 0),
		Limit:    clampListLimit(params.Limit),
		Type:     params.Type,
		IsActive: params.IsActive,
	}

	notifications, total, err := s.notificationRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return &model.NotificationPage{
		Notifications: notifications,
		Total:         total,
		Skip:          filter.Skip,
		Limit:         filter.Limit,
	}, nil
}

func (s *NotificationService) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	n, err := s.notificationRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select notification: %w", err)
	}

	return n, nil
}

// Create targets every user; createdBy is the admin issuing the request.
func (s *NotificationService) Create(ctx context.Context, createdBy *uuid.UUID, req model.NotificationCreateRequest) (*model.Notification, error) {
	if !model.IsValidNotificationType(req.Type) {
		return nil, apperrors.ErrInvalidNotificationType
	}

	n := &model.Notification{
		ID:         uuid.New(),
		Title:      req.Title,
		Message:    req.Message,
		Type:       req.Type,
		Target:     model.NotificationTargetAllUsers,
		TargetSpec: map[string]any{},
		Priority:   intOrDefault(req.Priority, 1),
		IsActive:   true,
		CreatedBy:  createdBy,
		ExpiresAt:  req.ExpiresAt,
	}

	n, err := s.notificationRepo.Insert(ctx, nil, n)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	return n, nil
}

func (s *NotificationService) Update(ctx context.Context, id uuid.UUID, req model.NotificationUpdateRequest) (*model.Notification, error) {
	if req.Type != nil && !model.IsValidNotificationType(*req.Type) {
		return nil, apperrors.ErrInvalidNotificationType
	}

	n, err := s.notificationRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select notification: %w", err)
	}

	setIfPresent(&n.Title, req.Title)
	setIfPresent(&n.Message, req.Message)
	setIfPresent(&n.Type, req.Type)
	setIfPresent(&n.Priority, req.Priority)
	setIfPresent(&n.IsActive, req.IsActive)

	if req.ExpiresAt != nil {
		n.ExpiresAt = req.ExpiresAt
	}

	n, err = s.notificationRepo.Update(ctx, nil, n)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}

	return n, nil
}

// Delete only deactivates the notification.
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.notificationRepo.Deactivate(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to deactivate notification: %w", err)
	}

	return nil
}

func (s *NotificationService) Stats(ctx context.Context) (*model.NotificationStats, error) {
	stats, err := s.notificationRepo.Stats(ctx, nil, s.now().Add(-recentNotificationsWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &stats, nil
}

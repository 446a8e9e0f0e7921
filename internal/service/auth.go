package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/jwt"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/redis"
)

const refreshTokenPrefix = "admin:refresh:"

type AdminUserRepository interface {
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.User, error)
	SelectByEmail(ctx context.Context, ext repository.RepoExtension, email string) (*model.User, error)
}

type TokenConfig struct {
	Issuer          string
	Audience        string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type AuthService struct {
	log         *zap.Logger
	privateKey  *ecdsa.PrivateKey
	userRepo    AdminUserRepository
	rdb         redis.Redis
	tokens      TokenConfig
	adminEmails []string
}

func NewAuthService(
	log *zap.Logger,
	privateKey *ecdsa.PrivateKey,
	userRepo AdminUserRepository,
	rdb redis.Redis,
	tokens TokenConfig,
	adminEmails []string,
) *AuthService {
	normalized := make([]string, 0, len(adminEmails))
	for _, email := range adminEmails {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(email)))
	}

	return &AuthService{
		log:         log,
		privateKey:  privateKey,
		userRepo:    userRepo,
		rdb:         rdb,
		tokens:      tokens,
		adminEmails: normalized,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if !s.isAdmin(email) {
		return nil, apperrors.ErrAdminAccessDenied
	}

	user, err := s.userRepo.SelectByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserDoesNotExist) {
			return nil, apperrors.ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err := s.newAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()

	if err := s.rdb.RDB().Set(ctx, refreshTokenPrefix+refreshToken, user.ID.String(), s.tokens.RefreshTokenTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.LoginResponse{
		User: model.AdminProfile{
			ID:        user.ID.String(),
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			FullName:  user.DisplayName(),
			Role:      model.RoleAdmin,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.rdb.RDB().Del(ctx, refreshTokenPrefix+refreshToken).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}

// Refresh rotates the refresh token; the old one stops working immediately.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	userID, err := s.rdb.RDB().Get(ctx, refreshTokenPrefix+refreshToken).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, apperrors.ErrRefreshTokenExpired
		}

		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse refresh token: %w", err)
	}

	user, err := s.userRepo.SelectByID(ctx, nil, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	if !user.IsActive || !s.isAdmin(strings.ToLower(user.Email)) {
		return nil, apperrors.ErrAdminAccessDenied
	}

	newAccessToken, err := s.newAccessToken(user)
	if err != nil {
		return nil, err
	}

	rdbPipe := s.rdb.RDB().TxPipeline()
	newRefreshToken := uuid.New().String()

	rdbPipe.Del(ctx, refreshTokenPrefix+refreshToken)
	rdbPipe.Set(ctx, refreshTokenPrefix+newRefreshToken, user.ID.String(), s.tokens.RefreshTokenTTL)

	if _, err := rdbPipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to exec transaction: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *AuthService) newAccessToken(user *model.User) (string, error) {
	token, err := jwt.NewToken(s.privateKey, s.tokens.AccessTokenTTL,
		jwt.WithRegistered(s.tokens.Issuer, s.tokens.Audience),
		jwt.WithClaim(model.UserUIDKey, user.ID.String()),
		jwt.WithClaim(model.UserEmailKey, user.Email),
		jwt.WithClaim(model.ScopeKey, model.ScopeAdmin),
		jwt.WithClaim(model.TokenTypeKey, model.TokenTypeAccess),
		jwt.WithClaim(model.TokenIDKey, uuid.New().String()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return token, nil
}

func (s *AuthService) isAdmin(email string) bool {
	return slices.Contains(s.adminEmails, email)
}

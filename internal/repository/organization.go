package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

const organizationsTable = "organizations"

var organizationColumns = []string{
	"id",
	"name",
	"url",
	"subscription_tier",
	"max_storage_gb",
	"billing_email",
	"support_email",
	"phone",
	"company_address",
	"primary_color",
	"environment",
	"description",
	"max_users",
	"max_monthly_prospects",
	"max_monthly_emails",
	"is_active",
	"features",
	"settings",
	"security_settings",
	"created_at",
	"updated_at",
}

type OrganizationRepository struct {
	db      *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewOrganizationRepository(db *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{
		db:      db,
		builder: newBuilder(),
	}
}

func (r *OrganizationRepository) Pool() *pgxpool.Pool {
	return r.db
}

func (r *OrganizationRepository) Insert(ctx context.Context, ext RepoExtension, org *model.Organization) (*model.Organization, error) {
	if ext == nil {
		ext = r.db
	}

	sql, args, err := r.builder.
		Insert(organizationsTable).
		Columns(organizationColumns[:len(organizationColumns)-2]...).
		Values(
			org.ID,
			org.Name,
			org.URL,
			org.SubscriptionTier,
			org.MaxStorageGB,
			org.BillingEmail,
			org.SupportEmail,
			org.Phone,
			org.CompanyAddress,
			org.PrimaryColor,
			org.Environment,
			org.Description,
			org.MaxUsers,
			org.MaxMonthlyProspects,
			org.MaxMonthlyEmails,
			org.IsActive,
			org.Features,
			org.Settings,
			org.SecuritySettings,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := ext.QueryRow(ctx, sql, args...).Scan(&org.CreatedAt, &org.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrOrganizationURLExists
		}

		return nil, err
	}

	return org, nil
}

func (r *OrganizationRepository) SelectByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.Organization, error) {
	if ext == nil {
		ext = r.db
	}

	sql, args, err := r.builder.
		Select(organizationColumns...).
		From(organizationsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	org, err := scanOrganization(ext.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganizationNotFound
		}

		return nil, err
	}

	return org, nil
}

func (r *OrganizationRepository) List(ctx context.Context, ext RepoExtension, filter model.OrganizationFilter) ([]model.Organization, int, error) {
	if ext == nil {
		ext = r.db
	}

	where := squirrel.And{}
	if filter.Search != "" {
		pattern := ilikePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"url": pattern},
		})
	}

	switch filter.Status {
	case model.OrganizationStatusActive:
		where = append(where, squirrel.Eq{"is_active": true})
	case model.OrganizationStatusInactive:
		where = append(where, squirrel.Eq{"is_active": false})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(organizationsTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := ext.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql, args, err := r.builder.
		Select(organizationColumns...).
		From(organizationsTable).
		Where(where).
		OrderBy("created_at DESC").
		Offset(uint64(filter.Skip)).
		Limit(uint64(filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	orgs, err := r.queryOrganizations(ctx, ext, sql, args)
	if err != nil {
		return nil, 0, err
	}

	return orgs, total, nil
}

// SelectActive returns every active organization, oldest first.
func (r *OrganizationRepository) SelectActive(ctx context.Context, ext RepoExtension) ([]model.Organization, error) {
	if ext == nil {
		ext = r.db
	}

	sql, args, err := r.builder.
		Select(organizationColumns...).
		From(organizationsTable).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	return r.queryOrganizations(ctx, ext, sql, args)
}

// Update writes every mutable column of org.
func (r *OrganizationRepository) Update(ctx context.Context, ext RepoExtension, org *model.Organization) (*model.Organization, error) {
	if ext == nil {
		ext = r.db
	}

	sql, args, err := r.builder.
		Update(organizationsTable).
		SetMap(map[string]any{
			"name":                  org.Name,
			"url":                   org.URL,
			"subscription_tier":     org.SubscriptionTier,
			"max_storage_gb":        org.MaxStorageGB,
			"billing_email":         org.BillingEmail,
			"support_email":         org.SupportEmail,
			"phone":                 org.Phone,
			"company_address":       org.CompanyAddress,
			"primary_color":         org.PrimaryColor,
			"environment":           org.Environment,
			"description":           org.Description,
			"max_users":             org.MaxUsers,
			"max_monthly_prospects": org.MaxMonthlyProspects,
			"max_monthly_emails":    org.MaxMonthlyEmails,
			"is_active":             org.IsActive,
			"features":              org.Features,
			"settings":              org.Settings,
			"security_settings":     org.SecuritySettings,
			"updated_at":            squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": org.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	if err := ext.QueryRow(ctx, sql, args...).Scan(&org.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrOrganizationNotFound
		case isUniqueViolation(err):
			return nil, apperrors.ErrOrganizationURLExists
		}

		return nil, err
	}

	return org, nil
}

// SetActive flips is_active and returns the updated row.
func (r *OrganizationRepository) SetActive(ctx context.Context, ext RepoExtension, id uuid.UUID, active bool) (*model.Organization, error) {
	if ext == nil {
		ext = r.db
	}

	sql, args, err := r.builder.
		Update(organizationsTable).
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(organizationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	org, err := scanOrganization(ext.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganizationNotFound
		}

		return nil, err
	}

	return org, nil
}

func (r *OrganizationRepository) queryOrganizations(ctx context.Context, ext RepoExtension, sql string, args []any) ([]model.Organization, error) {
	rows, err := ext.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	orgs := make([]model.Organization, 0)

	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}

		orgs = append(orgs, *org)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orgs, nil
}

func scanOrganization(row pgx.Row) (*model.Organization, error) {
	var org model.Organization

	if err := row.Scan(
		&org.ID,
		&org.Name,
		&org.URL,
		&org.SubscriptionTier,
		&org.MaxStorageGB,
		&org.BillingEmail,
		&org.SupportEmail,
		&org.Phone,
		&org.CompanyAddress,
		&org.PrimaryColor,
		&org.Environment,
		&org.Description,
		&org.MaxUsers,
		&org.MaxMonthlyProspects,
		&org.MaxMonthlyEmails,
		&org.IsActive,
		&org.Features,
		&org.Settings,
		&org.SecuritySettings,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &org, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type MembershipRepository struct {
	db *pgxpool.Pool
}

func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{
		db: db,
	}
}

func (r *MembershipRepository) Insert(ctx context.Context, ext RepoExtension, m *model.UserOrganization) (*model.UserOrganization, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO user_organizations (id, user_id, organization_id, role, is_active, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at;
	`

	err := ext.QueryRow(ctx, query,
		m.ID,
		m.UserID,
		m.OrganizationID,
		m.Role,
		m.IsActive,
		m.IsPrimary,
	).Scan(
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrMembershipExists
		}

		return nil, err
	}

	return m, nil
}

func (r *MembershipRepository) SelectByUserID(ctx context.Context, ext RepoExtension, userID uuid.UUID) ([]model.UserOrganization, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, user_id, organization_id, role, is_active, is_primary, created_at, updated_at
		FROM user_organizations
		WHERE user_id = $1
		ORDER BY is_primary DESC, created_at ASC;
	`

	return r.query(ctx, ext, query, userID)
}

// SelectActive returns every active membership, oldest first.
func (r *MembershipRepository) SelectActive(ctx context.Context, ext RepoExtension) ([]model.UserOrganization, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, user_id, organization_id, role, is_active, is_primary, created_at, updated_at
		FROM user_organizations
		WHERE is_active = true
		ORDER BY created_at ASC;
	`

	return r.query(ctx, ext, query)
}

func (r *MembershipRepository) query(ctx context.Context, ext RepoExtension, query string, args ...any) ([]model.UserOrganization, error) {
	rows, err := ext.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	memberships := make([]model.UserOrganization, 0)

	for rows.Next() {
		var m model.UserOrganization
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.OrganizationID,
			&m.Role,
			&m.IsActive,
			&m.IsPrimary,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}

		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return memberships, nil
}

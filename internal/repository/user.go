package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

const usersTable = "users"

var userColumns = []string{
	"id",
	"email",
	"encrypted_password",
	"first_name",
	"last_name",
	"full_name",
	"phone",
	"job_title",
	"department",
	"global_role",
	"is_active",
	"email_verified",
	"created_at",
	"updated_at",
}

type UserRepository struct {
	db      *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db:      db,
		builder: newBuilder(),
	}
}

func (r *UserRepository) Pool() *pgxpool.Pool {
	return r.db
}

func (r *UserRepository) Insert(ctx context.Context, ext RepoExtension, user *model.User) (*model.User, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO users (id, email, encrypted_password, first_name, last_name, full_name,
		                   phone, job_title, department, global_role, is_active, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at;
	`

	err := ext.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.EncryptedPassword,
		user.FirstName,
		user.LastName,
		user.FullName,
		user.Phone,
		user.JobTitle,
		user.Department,
		user.GlobalRole,
		user.IsActive,
		user.EmailVerified,
	).Scan(
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrUserAlreadyExists
		}

		return nil, err
	}

	return user, nil
}

func (r *UserRepository) SelectByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.User, error) {
	if ext == nil {
		ext = r.db
	}

	query := `SELECT ` + joinColumns(userColumns) + ` FROM users WHERE id = $1;`

	user, err := scanUser(ext.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserDoesNotExist
		}

		return nil, err
	}

	return user, nil
}

func (r *UserRepository) SelectByEmail(ctx context.Context, ext RepoExtension, email string) (*model.User, error) {
	if ext == nil {
		ext = r.db
	}

	query := `SELECT ` + joinColumns(userColumns) + ` FROM users WHERE email = $1;`

	user, err := scanUser(ext.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserDoesNotExist
		}

		return nil, err
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context, ext RepoExtension, filter model.UserFilter) ([]model.User, int, error) {
	if ext == nil {
		ext = r.db
	}

	where := squirrel.And{}
	if filter.Search != "" {
		pattern := ilikePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"full_name": pattern},
		})
	}

	if filter.OrganizationID != nil {
		where = append(where, squirrel.Expr(
			"id IN (SELECT user_id FROM user_organizations WHERE organization_id = ?)",
			*filter.OrganizationID,
		))
	}

	if len(filter.ExcludeEmails) > 0 {
		where = append(where, squirrel.NotEq{"email": filter.ExcludeEmails})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(usersTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := ext.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql, args, err := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(where).
		OrderBy("created_at DESC").
		Offset(uint64(filter.Skip)).
		Limit(uint64(filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	users, err := r.queryUsers(ctx, ext, sql, args)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// SelectActive returns every active user, oldest first.
func (r *UserRepository) SelectActive(ctx context.Context, ext RepoExtension) ([]model.User, error) {
	if ext == nil {
		ext = r.db
	}

	query := `SELECT ` + joinColumns(userColumns) + ` FROM users WHERE is_active = true ORDER BY created_at ASC;`

	return r.queryUsers(ctx, ext, query, nil)
}

// Update writes every mutable profile column of user.
func (r *UserRepository) Update(ctx context.Context, ext RepoExtension, user *model.User) (*model.User, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE users
		SET email = $1,
		    first_name = $2,
		    last_name = $3,
		    full_name = $4,
		    phone = $5,
		    job_title = $6,
		    department = $7,
		    is_active = $8,
		    updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at;
	`

	err := ext.QueryRow(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.FullName,
		user.Phone,
		user.JobTitle,
		user.Department,
		user.IsActive,
		user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrUserDoesNotExist
		case isUniqueViolation(err):
			return nil, apperrors.ErrUserAlreadyExists
		}

		return nil, err
	}

	return user, nil
}

// SetActive flips is_active and returns the updated row.
func (r *UserRepository) SetActive(ctx context.Context, ext RepoExtension, id uuid.UUID, active bool) (*model.User, error) {
	if ext == nil {
		ext = r.db
	}

	query := `
		UPDATE users
		SET is_active = $1,
		    updated_at = NOW()
		WHERE id = $2
		RETURNING ` + joinColumns(userColumns) + `;`

	user, err := scanUser(ext.QueryRow(ctx, query, active, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserDoesNotExist
		}

		return nil, err
	}

	return user, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, ext RepoExtension, sql string, args []any) ([]model.User, error) {
	rows, err := ext.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	users := make([]model.User, 0)

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}

		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.EncryptedPassword,
		&user.FirstName,
		&user.LastName,
		&user.FullName,
		&user.Phone,
		&user.JobTitle,
		&user.Department,
		&user.GlobalRole,
		&user.IsActive,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &user, nil
}

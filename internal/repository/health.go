package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthRepository struct {
	db *pgxpool.Pool
}

func NewHealthRepository(db *pgxpool.Pool) *HealthRepository {
	return &HealthRepository{
		db: db,
	}
}

func (r *HealthRepository) Ping(ctx context.Context, ext RepoExtension) error {
	if ext == nil {
		ext = r.db
	}

	var one int

	return ext.QueryRow(ctx, `SELECT 1;`).Scan(&one)
}

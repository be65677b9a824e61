package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
)

type tableRepo struct {
	pool *pgxpool.Pool
}

func (r *tableRepo) List(ctx context.Context, page repository.Page) ([]types.Table, error) {
	page = pageOrDefault(page)
	const query = `
		SELECT id, number, seats, occupied, created_at, updated_at
		FROM tables
		ORDER BY number
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []types.Table
	for rows.Next() {
		var t types.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Seats, &t.Occupied, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *tableRepo) Get(ctx context.Context, id string) (*types.Table, error) {
	const query = `
		SELECT id, number, seats, occupied, created_at, updated_at
		FROM tables WHERE id = $1
	`
	var t types.Table
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Number, &t.Seats, &t.Occupied, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepo) Create(ctx context.Context, t *types.Table) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	const query = `
		INSERT INTO tables (id, number, seats, occupied, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, t.ID, t.Number, t.Seats, t.Occupied, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *tableRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tables WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *tableRepo) SetOccupied(ctx context.Context, id string, occupied bool) error {
	const query = `
		UPDATE tables SET occupied = $2, updated_at = now() WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, occupied)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

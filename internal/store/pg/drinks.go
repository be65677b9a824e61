package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
)

type drinkRepo struct {
	pool *pgxpool.Pool
}

func (r *drinkRepo) List(ctx context.Context, f repository.DrinkFilter, page repository.Page) ([]types.Drink, error) {
	page = pageOrDefault(page)

	// WHERE dinámico con placeholders posicionales
	var conds []string
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("lower(category) = lower($%d)", len(args)))
	}
	if f.NameContains != "" {
		args = append(args, "%"+strings.ToLower(f.NameContains)+"%")
		conds = append(conds, fmt.Sprintf("lower(name) LIKE $%d", len(args)))
	}
	if f.OnlyAvailable {
		conds = append(conds, "available = true")
	}

	query := `SELECT id, name, category, description, price_cents, available, created_at, updated_at FROM drinks`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(" ORDER BY category, name LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drinks []types.Drink
	for rows.Next() {
		var d types.Drink
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Category, &d.Description, &d.PriceCents, &d.Available, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		drinks = append(drinks, d)
	}
	return drinks, rows.Err()
}

func (r *drinkRepo) Get(ctx context.Context, id string) (*types.Drink, error) {
	const query = `
		SELECT id, name, category, description, price_cents, available, created_at, updated_at
		FROM drinks WHERE id = $1
	`
	var d types.Drink
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.Category, &d.Description, &d.PriceCents, &d.Available, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *drinkRepo) Create(ctx context.Context, d *types.Drink) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	const query = `
		INSERT INTO drinks (id, name, category, description, price_cents, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		d.ID, d.Name, d.Category, d.Description, d.PriceCents, d.Available, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *drinkRepo) Update(ctx context.Context, d *types.Drink) error {
	d.UpdatedAt = time.Now().UTC()
	const query = `
		UPDATE drinks
		SET name = $2, category = $3, description = $4, price_cents = $5, available = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		d.ID, d.Name, d.Category, d.Description, d.PriceCents, d.Available, d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *drinkRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM drinks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

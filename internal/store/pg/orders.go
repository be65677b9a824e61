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

// orderRepo implementa repository.OrderRepository.
// Las líneas viven en order_items; Create inserta cabecera + líneas en una
// transacción.
type orderRepo struct {
	pool *pgxpool.Pool
}

func (r *orderRepo) Create(ctx context.Context, o *types.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = types.OrderPending
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const head = `
		INSERT INTO orders (id, table_id, user_email, status, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(ctx, head,
		o.ID, o.TableID, o.UserEmail, o.Status, o.TotalCents, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return err
	}

	const line = `
		INSERT INTO order_items (id, order_id, drink_id, quantity, unit_price_cents, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if _, err := tx.Exec(ctx, line,
			it.ID, o.ID, it.DrinkID, it.Quantity, it.UnitPriceCents, it.Notes,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) Get(ctx context.Context, id string) (*types.Order, error) {
	const query = `
		SELECT id, table_id, user_email, status, total_cents, created_at, updated_at
		FROM orders WHERE id = $1
	`
	var o types.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.TableID, &o.UserEmail, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter, page repository.Page) ([]types.Order, error) {
	page = pageOrDefault(page)

	var conds []string
	var args []any
	if f.UserEmail != "" {
		args = append(args, f.UserEmail)
		conds = append(conds, fmt.Sprintf("lower(user_email) = lower($%d)", len(args)))
	}
	if f.TableID != "" {
		args = append(args, f.TableID)
		conds = append(conds, fmt.Sprintf("table_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT id, table_id, user_email, status, total_cents, created_at, updated_at FROM orders`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []types.Order
	for rows.Next() {
		var o types.Order
		if err := rows.Scan(
			&o.ID, &o.TableID, &o.UserEmail, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status types.OrderStatus) error {
	const query = `
		UPDATE orders SET status = $2, updated_at = now() WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepo) loadItems(ctx context.Context, o *types.Order) error {
	const query = `
		SELECT id, drink_id, quantity, unit_price_cents, notes
		FROM order_items WHERE order_id = $1 ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	o.Items = o.Items[:0]
	for rows.Next() {
		var it types.OrderItem
		if err := rows.Scan(&it.ID, &it.DrinkID, &it.Quantity, &it.UnitPriceCents, &it.Notes); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

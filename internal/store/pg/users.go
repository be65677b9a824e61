package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/comandero/internal/auth"
	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
)

// userRepo implementa repository.UserRepository.
// La columna roles guarda la lista joined por comas; se parsea al leer y
// se normaliza al escribir (default USER si viene vacía).
type userRepo struct {
	pool *pgxpool.Pool
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	const query = `
		SELECT id, email, name, password_hash, roles, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*types.User, error) {
	const query = `
		SELECT id, email, name, password_hash, roles, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepo) List(ctx context.Context, page repository.Page) ([]types.User, error) {
	page = pageOrDefault(page)
	const query = `
		SELECT id, email, name, password_hash, roles, created_at, updated_at
		FROM users
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) Create(ctx context.Context, u *types.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	const query = `
		INSERT INTO users (id, email, name, password_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.Name, u.PasswordHash, auth.JoinRoles(u.Roles), u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *userRepo) Update(ctx context.Context, u *types.User) error {
	u.UpdatedAt = time.Now().UTC()
	const query = `
		UPDATE users
		SET name = $2, roles = $3, updated_at = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, u.ID, u.Name, auth.JoinRoles(u.Roles), u.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE lower(email) = lower($1)
	`
	tag, err := r.pool.Exec(ctx, query, email, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *userRepo) scanOne(row pgx.Row) (*types.User, error) {
	u, err := r.scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return u, err
}

func (r *userRepo) scanRow(row rowScanner) (*types.User, error) {
	var u types.User
	var rolesCSV string
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &rolesCSV, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Roles = auth.ParseRoles(rolesCSV)
	return &u, nil
}

// Package pg implementa los repositorios del dominio sobre PostgreSQL.
// Usa pgxpool directamente; cada repositorio recibe el pool compartido.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
)

const defaultPageLimit = 50

// Config configura la conexión al pool.
type Config struct {
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Store agrupa los repositorios concretos sobre un único pool.
type Store struct {
	pool *pgxpool.Pool

	users  *userRepo
	drinks *drinkRepo
	tables *tableRepo
	orders *orderRepo
}

// New abre el pool y construye los repositorios.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: abrir pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	return &Store{
		pool:   pool,
		users:  &userRepo{pool: pool},
		drinks: &drinkRepo{pool: pool},
		tables: &tableRepo{pool: pool},
		orders: &orderRepo{pool: pool},
	}, nil
}

// Close cierra el pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifica la conexión (para health checks).
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Users() repository.UserRepository   { return s.users }
func (s *Store) Drinks() repository.DrinkRepository { return s.drinks }
func (s *Store) Tables() repository.TableRepository { return s.tables }
func (s *Store) Orders() repository.OrderRepository { return s.orders }

// pageOrDefault normaliza la paginación de listados.
func pageOrDefault(p repository.Page) repository.Page {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = defaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

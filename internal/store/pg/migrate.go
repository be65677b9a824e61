package pg

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	migrations "github.com/dropDatabas3/comandero/migrations/postgres"
)

// Migrate aplica las migraciones embebidas contra la base indicada.
// goose trabaja sobre database/sql, así que abre su propia conexión stdlib
// aparte del pool pgx del Store.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("pg: abrir conexión de migración: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("pg: aplicar migraciones: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all tables and indexes. It is idempotent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createProgramsTable(ctx, db); err != nil {
		return err
	}
	return createFeedbackTable(ctx, db)
}

// Column names follow the historical dataset so existing .sql dumps load as-is.
func createProgramsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS programas (
		codcarrera INTEGER PRIMARY KEY,
		descarrera TEXT NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create programas table: %w", err)
	}
	return nil
}

func createFeedbackTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS vision (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nombre TEXT NOT NULL,
		mensaje TEXT NOT NULL,
		creado_en INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_vision_creado_en ON vision(creado_en);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create vision table: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domerrors "github.com/sisemasexp/portal/internal/errors"
)

// ListPrograms returns every program ordered by code.
func (db *DB) ListPrograms(ctx context.Context) ([]Program, error) {
	rows, err := db.reader.QueryContext(ctx, `SELECT codcarrera, descarrera FROM programas ORDER BY codcarrera`)
	if err != nil {
		return nil, domerrors.NewStorageError("list_programs", err)
	}
	defer func() { _ = rows.Close() }()

	return scanPrograms(rows, "list_programs")
}

// GetProgramByCode returns the program with the given code.
func (db *DB) GetProgramByCode(ctx context.Context, code int) (*Program, error) {
	var p Program
	err := db.reader.QueryRowContext(ctx,
		`SELECT codcarrera, descarrera FROM programas WHERE codcarrera = ?`, code,
	).Scan(&p.Code, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("program %d: %w", code, domerrors.ErrNotFound)
	}
	if err != nil {
		return nil, domerrors.NewStorageError("get_program", err)
	}
	return &p, nil
}

// SearchPrograms matches term anywhere in the program name.
func (db *DB) SearchPrograms(ctx context.Context, term string) ([]Program, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return db.ListPrograms(ctx)
	}
	rows, err := db.reader.QueryContext(ctx,
		`SELECT codcarrera, descarrera FROM programas WHERE descarrera LIKE ? ESCAPE '\' ORDER BY codcarrera`,
		"%"+sanitizeSearchTerm(term)+"%",
	)
	if err != nil {
		return nil, domerrors.NewStorageError("search_programs", err)
	}
	defer func() { _ = rows.Close() }()

	return scanPrograms(rows, "search_programs")
}

func scanPrograms(rows *sql.Rows, op string) ([]Program, error) {
	programs := make([]Program, 0)
	for rows.Next() {
		var p Program
		if err := rows.Scan(&p.Code, &p.Name); err != nil {
			return nil, domerrors.NewStorageError(op, err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domerrors.NewStorageError(op, err)
	}
	return programs, nil
}

// CreateProgram inserts p, refusing to overwrite an existing code.
func (db *DB) CreateProgram(ctx context.Context, p Program) error {
	res, err := db.writer.ExecContext(ctx,
		`INSERT INTO programas (codcarrera, descarrera) VALUES (?, ?) ON CONFLICT(codcarrera) DO NOTHING`,
		p.Code, p.Name,
	)
	if err != nil {
		return domerrors.NewStorageError("create_program", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domerrors.NewStorageError("create_program", err)
	}
	if n == 0 {
		return fmt.Errorf("program %d: %w", p.Code, domerrors.ErrDuplicate)
	}
	return nil
}

// UpdateProgram renames the program identified by p.Code.
func (db *DB) UpdateProgram(ctx context.Context, p Program) error {
	res, err := db.writer.ExecContext(ctx,
		`UPDATE programas SET descarrera = ? WHERE codcarrera = ?`, p.Name, p.Code,
	)
	return affectedOne(res, err, "update_program", p.Code)
}

// DeleteProgram removes the program with the given code.
func (db *DB) DeleteProgram(ctx context.Context, code int) error {
	res, err := db.writer.ExecContext(ctx, `DELETE FROM programas WHERE codcarrera = ?`, code)
	return affectedOne(res, err, "delete_program", code)
}

func affectedOne(res sql.Result, err error, op string, code int) error {
	if err != nil {
		return domerrors.NewStorageError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domerrors.NewStorageError(op, err)
	}
	if n == 0 {
		return fmt.Errorf("program %d: %w", code, domerrors.ErrNotFound)
	}
	return nil
}

// CountPrograms returns the number of programs.
func (db *DB) CountPrograms(ctx context.Context) (int, error) {
	var n int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM programas`).Scan(&n); err != nil {
		return 0, domerrors.NewStorageError("count_programs", err)
	}
	return n, nil
}

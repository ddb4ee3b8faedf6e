// Package storage persists academic programs and visitor feedback in SQLite.
//
// A single writer connection serializes writes while a small reader pool
// serves concurrent queries; both share the same WAL-mode database file.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

const memoryPath = ":memory:"

// DB wraps the SQLite reader and writer pools.
type DB struct {
	reader *sql.DB
	writer *sql.DB
	path   string
}

// New opens (creating if needed) the database at dbPath and initializes the schema.
// ":memory:" opens a private in-memory database backed by one connection.
func New(ctx context.Context, dbPath string) (*DB, error) {
	if dbPath == memoryPath {
		conn, err := openConn(ctx, memoryPath, 1)
		if err != nil {
			return nil, err
		}
		db := &DB{reader: conn, writer: conn, path: dbPath}
		return db, db.init(ctx)
	}

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	writer, err := openConn(ctx, dbPath, 1)
	if err != nil {
		return nil, err
	}
	reader, err := openConn(ctx, dbPath, 4)
	if err != nil {
		_ = writer.Close()
		return nil, err
	}

	db := &DB{reader: reader, writer: writer, path: dbPath}
	return db, db.init(ctx)
}

func (db *DB) init(ctx context.Context) error {
	if err := InitSchema(ctx, db.writer); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// pragmas are applied to every pooled connection through the DSN.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(ON)",
	"synchronous(NORMAL)",
}

func dsn(path string) string {
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		if path == memoryPath && strings.HasPrefix(p, "journal_mode") {
			continue
		}
		params = append(params, "_pragma="+p)
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

func openConn(ctx context.Context, path string, maxOpen int) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxOpen)
	if path == memoryPath {
		// Closing the last connection would discard the database.
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	} else {
		conn.SetConnMaxLifetime(time.Hour)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// Close closes both pools.
func (db *DB) Close() error {
	var err error
	if db.writer != nil {
		err = db.writer.Close()
	}
	if db.reader != nil && db.reader != db.writer {
		if rerr := db.reader.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Reader returns the read pool.
func (db *DB) Reader() *sql.DB {
	return db.reader
}

// Writer returns the single-connection write pool.
func (db *DB) Writer() *sql.DB {
	return db.writer
}

// Ping verifies both pools are reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.writer.PingContext(ctx); err != nil {
		return fmt.Errorf("writer ping: %w", err)
	}
	if err := db.reader.PingContext(ctx); err != nil {
		return fmt.Errorf("reader ping: %w", err)
	}
	return nil
}

// Ready runs a trivial query against the schema.
func (db *DB) Ready(ctx context.Context) error {
	var n int
	if err := db.reader.QueryRowContext(ctx, "SELECT COUNT(*) FROM programas").Scan(&n); err != nil {
		return fmt.Errorf("readiness query: %w", err)
	}
	return nil
}

// ExecScript runs a multi-statement SQL script inside one transaction.
// Either every statement applies or none does.
func (db *DB) ExecScript(ctx context.Context, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("exec script: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateSnapshot writes a consistent copy of the database to dest using VACUUM INTO.
// dest must not exist.
func (db *DB) CreateSnapshot(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("snapshot destination already exists: %s", dest)
	}
	if _, err := db.writer.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("vacuum into: %w", err)
	}
	return nil
}

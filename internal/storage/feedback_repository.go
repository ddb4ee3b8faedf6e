package storage

import (
	"context"
	"time"

	domerrors "github.com/sisemasexp/portal/internal/errors"
)

// SaveFeedback stores a visitor message and returns it with its ID.
func (db *DB) SaveFeedback(ctx context.Context, name, message string) (*Feedback, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.writer.ExecContext(ctx,
		`INSERT INTO vision (nombre, mensaje, creado_en) VALUES (?, ?, ?)`,
		name, message, now.Unix(),
	)
	if err != nil {
		return nil, domerrors.NewStorageError("save_feedback", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, domerrors.NewStorageError("save_feedback", err)
	}
	return &Feedback{ID: id, Name: name, Message: message, CreatedAt: now}, nil
}

// ListRecentFeedback returns up to limit messages, newest first.
func (db *DB) ListRecentFeedback(ctx context.Context, limit int) ([]Feedback, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.reader.QueryContext(ctx,
		`SELECT id, nombre, mensaje, creado_en FROM vision ORDER BY creado_en DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, domerrors.NewStorageError("list_feedback", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]Feedback, 0, limit)
	for rows.Next() {
		var (
			f       Feedback
			created int64
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Message, &created); err != nil {
			return nil, domerrors.NewStorageError("list_feedback", err)
		}
		f.CreatedAt = time.Unix(created, 0).UTC()
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domerrors.NewStorageError("list_feedback", err)
	}
	return items, nil
}

// CountFeedback returns the number of stored messages.
func (db *DB) CountFeedback(ctx context.Context) (int, error) {
	var n int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM vision`).Scan(&n); err != nil {
		return 0, domerrors.NewStorageError("count_feedback", err)
	}
	return n, nil
}

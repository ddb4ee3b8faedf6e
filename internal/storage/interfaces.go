package storage

import "context"

// ProgramRepository defines program catalog operations.
type ProgramRepository interface {
	// ListPrograms returns every program ordered by code ascending.
	ListPrograms(ctx context.Context) ([]Program, error)
	// GetProgramByCode returns errors.ErrNotFound when code is absent.
	GetProgramByCode(ctx context.Context, code int) (*Program, error)
	// SearchPrograms returns programs whose name contains term (case-insensitive, ASCII).
	SearchPrograms(ctx context.Context, term string) ([]Program, error)
	// CreateProgram returns errors.ErrDuplicate when the code is taken.
	CreateProgram(ctx context.Context, p Program) error
	// UpdateProgram returns errors.ErrNotFound when code is absent.
	UpdateProgram(ctx context.Context, p Program) error
	// DeleteProgram returns errors.ErrNotFound when code is absent.
	DeleteProgram(ctx context.Context, code int) error
	CountPrograms(ctx context.Context) (int, error)
}

// FeedbackRepository defines visitor feedback operations.
type FeedbackRepository interface {
	SaveFeedback(ctx context.Context, name, message string) (*Feedback, error)
	ListRecentFeedback(ctx context.Context, limit int) ([]Feedback, error)
	CountFeedback(ctx context.Context) (int, error)
}

// HealthRepository defines health check operations.
type HealthRepository interface {
	Ping(ctx context.Context) error
	Ready(ctx context.Context) error
}

// Repository is the aggregate implemented by *DB.
type Repository interface {
	ProgramRepository
	FeedbackRepository
	HealthRepository
	Close() error
}

var (
	_ ProgramRepository  = (*DB)(nil)
	_ FeedbackRepository = (*DB)(nil)
	_ HealthRepository   = (*DB)(nil)
	_ Repository         = (*DB)(nil)
)

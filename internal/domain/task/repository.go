package task

import (
	"context"
	"time"
)

// Repository handles task data operations.
type Repository interface {
	// GetByID retrieves a task owned by the given client.
	GetByID(ctx context.Context, id, clientID string) (Task, error)

	// ListByClient retrieves the client's tasks, optionally filtered on the
	// sent flag.
	ListByClient(ctx context.Context, clientID string, isSent *bool) ([]Task, error)

	// ListDueUnsent returns unsent tasks whose notification date falls in
	// [from, to], across all clients. Used by the daily sweep.
	ListDueUnsent(ctx context.Context, from, to time.Time) ([]Task, error)

	// CreateBatch inserts all tasks, returning them with generated IDs.
	CreateBatch(ctx context.Context, tasks []Task) ([]Task, error)

	// Claim atomically flips is_sent from false to true. It returns false
	// when the task was already sent (or concurrently claimed), which is how
	// overlapping sweeps avoid duplicate sends.
	Claim(ctx context.Context, id string) (bool, error)

	// Release undoes a claim after a dispatch that attempted nothing, so the
	// task is retried by a later sweep.
	Release(ctx context.Context, id string) error
}

package subscription

import (
	"context"
	"time"
)

// Repository handles subscription data operations. Reads are scoped by
// clientID; sweep queries cut across tenants and are only reachable from the
// background jobs.
type Repository interface {
	// GetByID retrieves a subscription owned by the given client.
	GetByID(ctx context.Context, id, clientID string) (Subscription, error)

	// ListByClient retrieves all subscriptions for a client.
	ListByClient(ctx context.Context, clientID string) ([]Subscription, error)

	// FindActiveByEndUserAndTemplate returns the ACTIVE subscription for an
	// (endUser, template) pair, if one exists.
	FindActiveByEndUserAndTemplate(ctx context.Context, endUserID, templateID string) (Subscription, error)

	// ListActiveDue returns all ACTIVE subscriptions whose next due date has
	// arrived (nextDueDate <= now), across all clients.
	ListActiveDue(ctx context.Context, now time.Time) ([]Subscription, error)

	// Create creates a new subscription.
	Create(ctx context.Context, s Subscription) (Subscription, error)

	// UpdateStatus updates the subscription status.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// UpdateNextDueDate advances the subscription to its next billing cycle.
	UpdateNextDueDate(ctx context.Context, id string, nextDueDate time.Time) error

	// UpdateLastPaidDate records the most recent successful payment date.
	UpdateLastPaidDate(ctx context.Context, id string, paidAt time.Time) error

	// Cancel sets the subscription CANCELLED with the given end date.
	Cancel(ctx context.Context, id string, endedAt time.Time) error

	// Delete removes the subscription and its dependent payments and tasks.
	Delete(ctx context.Context, id string) error
}

package subscription

import "context"

// Service is the subscription lifecycle contract exposed to the HTTP layer
// and to support tooling.
type Service interface {
	// Create enrolls an end user: one transaction producing the ACTIVE
	// subscription, its first PENDING payment and its reminder tasks.
	Create(ctx context.Context, clientID string, req CreateRequest) (Response, error)

	// Get retrieves a subscription scoped to the client.
	Get(ctx context.Context, clientID, id string) (Response, error)

	// List retrieves all of the client's subscriptions.
	List(ctx context.Context, clientID string) ([]Response, error)

	// Pause transitions ACTIVE -> PAUSED.
	Pause(ctx context.Context, clientID, id string) error

	// Resume transitions PAUSED -> ACTIVE and recomputes the next due date
	// from the template schedule.
	Resume(ctx context.Context, clientID, id string) error

	// Cancel transitions any non-terminal state to CANCELLED and cancels the
	// subscription's pending payments.
	Cancel(ctx context.Context, clientID, id string) error

	// Delete removes a subscription with no payment history.
	Delete(ctx context.Context, clientID, id string) error

	// ResendNotification re-dispatches a reminder for the subscription's
	// earliest outstanding payment through the regular dispatch path.
	ResendNotification(ctx context.Context, clientID, id string) error
}

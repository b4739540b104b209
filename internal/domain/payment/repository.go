package payment

import (
	"context"
	"time"
)

// Repository handles payment data operations.
type Repository interface {
	// GetByID retrieves a payment owned by the given client.
	GetByID(ctx context.Context, id, clientID string) (Payment, error)

	// GetByGatewayID retrieves a payment by its provider-side link ID.
	GetByGatewayID(ctx context.Context, gatewayPaymentID string) (Payment, error)

	// GetBySubscriptionAndDueDate retrieves the payment for one due cycle.
	GetBySubscriptionAndDueDate(ctx context.Context, subscriptionID string, dueDate time.Time) (Payment, error)

	// FirstOutstandingBySubscription returns the earliest PENDING or OVERDUE
	// payment on the subscription, by due date ascending.
	FirstOutstandingBySubscription(ctx context.Context, subscriptionID string) (Payment, error)

	// ListByClient retrieves all payments for a client.
	ListByClient(ctx context.Context, clientID string) ([]Payment, error)

	// Create inserts a new payment; a unique index on (subscription_id,
	// due_date) backs the materializer's idempotency guarantee.
	Create(ctx context.Context, p Payment) (Payment, error)

	// UpdateStatus updates the payment status.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// MarkPaid sets status PAID with the paid date and optional gateway ID.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, gatewayPaymentID *string) error

	// IncrementNotifications bumps the attempt counter and stamps the last
	// notification time.
	IncrementNotifications(ctx context.Context, id string, at time.Time) error

	// CancelPendingBySubscription flips the subscription's PENDING payments
	// to CANCELLED, returning how many were affected.
	CancelPendingBySubscription(ctx context.Context, subscriptionID string) (int64, error)

	// CountPaidBySubscription counts PAID payments on a subscription.
	CountPaidBySubscription(ctx context.Context, subscriptionID string) (int, error)

	// MarkOverdueDueBefore flips PENDING payments past their due date to
	// OVERDUE, returning how many were affected.
	MarkOverdueDueBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

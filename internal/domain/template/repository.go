package template

import "context"

// Repository handles template data operations. All lookups are scoped by
// clientID for tenant isolation.
type Repository interface {
	// GetByID retrieves a template owned by the given client.
	GetByID(ctx context.Context, id, clientID string) (Template, error)

	// ListByClient retrieves all templates for a client.
	ListByClient(ctx context.Context, clientID string) ([]Template, error)

	// Create creates a new template.
	Create(ctx context.Context, t Template) (Template, error)

	// HasActiveSubscriptions reports whether any ACTIVE subscription
	// references the template.
	HasActiveSubscriptions(ctx context.Context, id string) (bool, error)

	// SetActive flips the template's active flag.
	SetActive(ctx context.Context, id, clientID string, active bool) error
}

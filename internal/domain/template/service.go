package template

import "context"

// Service defines template management operations, all tenant-scoped.
type Service interface {
	Create(ctx context.Context, clientID string, req CreateRequest) (Template, error)
	Get(ctx context.Context, clientID, id string) (Template, error)
	List(ctx context.Context, clientID string) ([]Template, error)

	// SetActive activates or deactivates a template. Deactivation is
	// refused while ACTIVE subscriptions reference the template.
	SetActive(ctx context.Context, clientID, id string, active bool) error
}

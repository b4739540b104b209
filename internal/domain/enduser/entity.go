package enduser

import (
	"context"
	"errors"
	"time"
)

// EndUser is a client's customer: the recipient of reminders and payment
// links. Email and Phone are optional; which one a dispatch needs depends on
// the template's notification method.
type EndUser struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrEndUserNotFound = errors.New("end user not found")

// Repository handles end-user data operations, scoped by clientID.
type Repository interface {
	GetByID(ctx context.Context, id, clientID string) (EndUser, error)
	ListByClient(ctx context.Context, clientID string) ([]EndUser, error)
	Create(ctx context.Context, u EndUser) (EndUser, error)
}

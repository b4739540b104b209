package enduser

import (
	"context"

	"github.com/duetap/duetap-backend-go/internal/pkg/validator"
)

// CreateRequest represents a request to register an end user (a client's
// customer). At least one contact channel is required; which one a given
// reminder needs depends on the template's notification method.
type CreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if validator.IsEmpty(r.Email) && validator.IsEmpty(r.Phone) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "at least one of email or phone is required"})
	}
	if r.Email != "" && !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if r.Phone != "" && !validator.IsValidPhoneNumber(r.Phone) {
		errs = append(errs, validator.ValidationError{Field: "phone", Message: "phone must be a valid phone number"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Service defines end-user management operations, all tenant-scoped.
type Service interface {
	Create(ctx context.Context, clientID string, req CreateRequest) (EndUser, error)
	Get(ctx context.Context, clientID, id string) (EndUser, error)
	List(ctx context.Context, clientID string) ([]EndUser, error)
}

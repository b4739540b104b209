package response

import (
	"errors"
	"net/http"

	"github.com/duetap/duetap-backend-go/internal/domain/client"
	"github.com/duetap/duetap-backend-go/internal/domain/enduser"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/domain/subscription"
	"github.com/duetap/duetap-backend-go/internal/domain/task"
	"github.com/duetap/duetap-backend-go/internal/domain/template"
	"github.com/duetap/duetap-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not-found
	case errors.Is(err, client.ErrClientNotFound):
		NotFound(w, "Client not found")
	case errors.Is(err, enduser.ErrEndUserNotFound):
		NotFound(w, "End user not found")
	case errors.Is(err, template.ErrTemplateNotFound):
		NotFound(w, "Template not found")
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		NotFound(w, "Subscription not found")
	case errors.Is(err, payment.ErrPaymentNotFound):
		NotFound(w, "Payment not found")
	case errors.Is(err, task.ErrTaskNotFound):
		NotFound(w, "Task not found")

	// Subscription lifecycle
	case errors.Is(err, subscription.ErrDuplicateActive):
		Conflict(w, "An active subscription already exists for this end user and template")
	case errors.Is(err, subscription.ErrNotActive):
		Conflict(w, "Subscription is not active")
	case errors.Is(err, subscription.ErrNotPaused):
		Conflict(w, "Subscription is not paused")
	case errors.Is(err, subscription.ErrAlreadyCancelled):
		Conflict(w, "Subscription is already cancelled")
	case errors.Is(err, subscription.ErrHasPaymentHistory):
		Conflict(w, "Subscription has paid payments and can only be cancelled")

	// Template / payment state
	case errors.Is(err, template.ErrTemplateInactive):
		BadRequest(w, "Template is inactive", nil)
	case errors.Is(err, template.ErrTemplateInUse):
		Conflict(w, "Template is referenced by active subscriptions")
	case errors.Is(err, payment.ErrAlreadyPaid):
		Conflict(w, "Payment is already paid")
	case errors.Is(err, payment.ErrNoActivePayment):
		Conflict(w, "No outstanding payment on this subscription")
	case errors.Is(err, payment.ErrMethodNotConfigured):
		BadRequest(w, "Payment method is not configured", nil)
	case errors.Is(err, task.ErrTaskAlreadySent):
		Conflict(w, "Reminder has already been sent")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

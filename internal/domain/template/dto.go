package template

import (
	"github.com/shopspring/decimal"

	"github.com/duetap/duetap-backend-go/internal/pkg/validator"
)

// CreateRequest represents a request to create a reminder template.
type CreateRequest struct {
	Name               string          `json:"name"`
	Title              string          `json:"title"`
	Body               string          `json:"body"`
	RecurringDuration  int             `json:"recurring_duration"`
	DurationUnit       DurationUnit    `json:"duration_unit"`
	NotificationMethod NotificationMethod `json:"notification_method"`
	PaymentMethod      PaymentMethod   `json:"payment_method,omitempty"`
	DefaultAmount      decimal.Decimal `json:"default_amount,omitempty"`
}

var validUnits = map[DurationUnit]bool{
	UnitMinutes: true,
	UnitHours:   true,
	UnitDays:    true,
	UnitWeeks:   true,
	UnitMonths:  true,
}

var validMethods = map[NotificationMethod]bool{
	MethodWhatsApp: true,
	MethodEmail:    true,
	MethodBoth:     true,
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if validator.IsEmpty(r.Body) {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "body is required"})
	}
	if r.RecurringDuration < 1 {
		errs = append(errs, validator.ValidationError{Field: "recurring_duration", Message: "recurring_duration must be at least 1"})
	}
	if !validUnits[r.DurationUnit] {
		errs = append(errs, validator.ValidationError{Field: "duration_unit", Message: "duration_unit must be one of MINUTES, HOURS, DAYS, WEEKS, MONTHS"})
	}
	if !validMethods[r.NotificationMethod] {
		errs = append(errs, validator.ValidationError{Field: "notification_method", Message: "notification_method must be one of WHATSAPP, EMAIL, BOTH"})
	}
	// Payment method is optional: a template without one sends reminders
	// with no hosted payment link.
	if r.PaymentMethod != "" && r.PaymentMethod != PaymentRazorpay && r.PaymentMethod != PaymentStripe {
		errs = append(errs, validator.ValidationError{Field: "payment_method", Message: "payment_method must be one of RAZORPAY, STRIPE"})
	}
	if r.DefaultAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "default_amount", Message: "default_amount must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

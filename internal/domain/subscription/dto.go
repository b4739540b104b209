package subscription

import (
	"time"

	"github.com/duetap/duetap-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ==================== Request DTOs ====================

// CreateRequest represents a request to enroll an end user into a template's
// recurring schedule.
type CreateRequest struct {
	EndUserID       string          `json:"end_user_id"`
	TemplateID      string          `json:"template_id"`
	Amount          decimal.Decimal `json:"amount"`
	NextDueDate     string          `json:"next_due_date"`
	StartDate       string          `json:"start_date,omitempty"`
	EndDate         string          `json:"end_date,omitempty"`
	CustomOverrides []int           `json:"custom_overrides,omitempty"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EndUserID) {
		errs = append(errs, validator.ValidationError{Field: "end_user_id", Message: "end_user_id is required"})
	}
	if validator.IsEmpty(r.TemplateID) {
		errs = append(errs, validator.ValidationError{Field: "template_id", Message: "template_id is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if validator.IsEmpty(r.NextDueDate) {
		errs = append(errs, validator.ValidationError{Field: "next_due_date", Message: "next_due_date is required"})
	} else if _, ok := validator.IsValidDate(r.NextDueDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "next_due_date", Message: "next_due_date must be a valid date (YYYY-MM-DD or RFC 3339)"})
	}
	if r.StartDate != "" {
		if _, ok := validator.IsValidDate(r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be a valid date"})
		}
	}
	if r.EndDate != "" {
		if _, ok := validator.IsValidDate(r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be a valid date"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParsedDates returns the parsed next-due/start/end dates. Call only after
// Validate has passed.
func (r *CreateRequest) ParsedDates(now time.Time) (nextDue, start time.Time, end *time.Time) {
	nextDue, _ = validator.IsValidDate(r.NextDueDate)
	start = now
	if r.StartDate != "" {
		start, _ = validator.IsValidDate(r.StartDate)
	}
	if r.EndDate != "" {
		parsed, _ := validator.IsValidDate(r.EndDate)
		end = &parsed
	}
	return nextDue, start, end
}

// ==================== Response DTOs ====================

// Response is the subscription representation returned to API callers.
type Response struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	EndUserID       string          `json:"end_user_id"`
	TemplateID      string          `json:"template_id"`
	Amount          decimal.Decimal `json:"amount"`
	Status          Status          `json:"status"`
	NextDueDate     time.Time       `json:"next_due_date"`
	LastPaidDate    *time.Time      `json:"last_paid_date,omitempty"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	CustomOverrides []int           `json:"custom_overrides"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToResponse maps a subscription entity to its API representation.
func ToResponse(s Subscription) Response {
	return Response{
		ID:              s.ID,
		ClientID:        s.ClientID,
		EndUserID:       s.EndUserID,
		TemplateID:      s.TemplateID,
		Amount:          s.Amount,
		Status:          s.Status,
		NextDueDate:     s.NextDueDate,
		LastPaidDate:    s.LastPaidDate,
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		CustomOverrides: s.CustomOverrides,
		CreatedAt:       s.CreatedAt,
	}
}

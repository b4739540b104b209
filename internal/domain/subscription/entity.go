package subscription

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCancelled Status = "CANCELLED"
)

// Subscription enrolls one end user into one template's recurring schedule.
// Amount is fixed at creation time and is independent of the template's
// default amount (per-customer pricing override). CustomOverrides is an
// ordered list of signed offsets, in the template's duration unit, relative
// to each due date: [-2, 0, 3] means remind two units before, on, and three
// units after the due date.
type Subscription struct {
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
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsActive reports whether the subscription participates in billing sweeps.
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

package payment

import (
	"time"

	"github.com/duetap/duetap-backend-go/internal/domain/template"
	"github.com/shopspring/decimal"
)

// Status represents the status of a payment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusOverdue   Status = "OVERDUE"
)

// GatewayEvent is an inbound payment-gateway webhook event, already parsed
// and signature-verified upstream.
type GatewayEvent string

const (
	EventPaid      GatewayEvent = "paid"
	EventCancelled GatewayEvent = "cancelled"
	EventFailed    GatewayEvent = "failed"
)

// Payment is one monetary obligation for one subscription due date. The
// (SubscriptionID, DueDate) pair is unique; that uniqueness is the
// idempotency key that keeps the cycle advancer from double-charging.
type Payment struct {
	ID                   string                 `json:"id"`
	ClientID             string                 `json:"client_id"`
	EndUserID            string                 `json:"end_user_id"`
	SubscriptionID       string                 `json:"subscription_id"`
	Amount               decimal.Decimal        `json:"amount"`
	Status               Status                 `json:"status"`
	DueDate              time.Time              `json:"due_date"`
	PaidDate             *time.Time             `json:"paid_date,omitempty"`
	PaymentMethod        template.PaymentMethod `json:"payment_method"`
	GatewayPaymentID     *string                `json:"gateway_payment_id,omitempty"`
	PaymentLink          *string                `json:"payment_link,omitempty"`
	NotificationsSent    int                    `json:"notifications_sent"`
	LastNotificationSent *time.Time             `json:"last_notification_sent,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// IsOutstanding reports whether the payment still awaits money.
func (p *Payment) IsOutstanding() bool {
	return p.Status == StatusPending || p.Status == StatusOverdue
}

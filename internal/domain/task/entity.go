package task

import (
	"time"

	"github.com/duetap/duetap-backend-go/internal/domain/template"
	"github.com/shopspring/decimal"
)

// Task is a scheduled reminder: one row per (subscription, offset),
// materialized when the payment cycle is created. Title, body and name are
// snapshots rendered with subscriber context at creation time; they do not
// re-render if the template changes later. Only IsSent mutates, and only
// through the repository's conditional claim.
type Task struct {
	ID                 string                      `json:"id"`
	ClientID           string                      `json:"client_id"`
	EndUserID          string                      `json:"end_user_id"`
	TemplateID         string                      `json:"template_id"`
	SubscriptionID     string                      `json:"subscription_id"`
	PaymentID          *string                     `json:"payment_id,omitempty"`
	TemplateName       string                      `json:"template_name"`
	TemplateTitle      string                      `json:"template_title"`
	TemplateBody       string                      `json:"template_body"`
	PaymentLink        *string                     `json:"payment_link,omitempty"`
	NotificationMethod template.NotificationMethod `json:"notification_method"`
	NotificationDate   time.Time                   `json:"notification_date"`
	DueDate            time.Time                   `json:"due_date"`
	Amount             decimal.Decimal             `json:"amount"`
	IsSent             bool                        `json:"is_sent"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

package template

import (
	"time"

	"github.com/duetap/duetap-backend-go/internal/pkg/schedule"
	"github.com/shopspring/decimal"
)

// NotificationMethod selects the reminder channel(s) for a template.
type NotificationMethod string

const (
	MethodWhatsApp NotificationMethod = "WHATSAPP"
	MethodEmail    NotificationMethod = "EMAIL"
	MethodBoth     NotificationMethod = "BOTH"
)

// PaymentMethod selects the payment-link provider for a template.
type PaymentMethod string

const (
	PaymentRazorpay PaymentMethod = "RAZORPAY"
	PaymentStripe   PaymentMethod = "STRIPE"
)

// DurationUnit is the unit of a template's recurring schedule. Values match
// schedule.Unit; conversion is explicit at call sites.
type DurationUnit string

const (
	UnitMinutes DurationUnit = DurationUnit(schedule.UnitMinutes)
	UnitHours   DurationUnit = DurationUnit(schedule.UnitHours)
	UnitDays    DurationUnit = DurationUnit(schedule.UnitDays)
	UnitWeeks   DurationUnit = DurationUnit(schedule.UnitWeeks)
	UnitMonths  DurationUnit = DurationUnit(schedule.UnitMonths)
)

// Template is a client-owned reminder message plus its recurring schedule.
// Title and Body may contain {{variable}} placeholders. Once a subscription
// references a template its identity is immutable: it must not be deleted or
// deactivated while active subscriptions exist.
type Template struct {
	ID                 string             `json:"id"`
	ClientID           string             `json:"client_id"`
	Name               string             `json:"name"`
	Title              string             `json:"title"`
	Body               string             `json:"body"`
	RecurringDuration  int                `json:"recurring_duration"`
	DurationUnit       DurationUnit       `json:"duration_unit"`
	NotificationMethod NotificationMethod `json:"notification_method"`
	PaymentMethod      PaymentMethod      `json:"payment_method"`
	DefaultAmount      decimal.Decimal    `json:"default_amount"`
	IsActive           bool               `json:"is_active"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// WantsWhatsApp reports whether the template's channel config includes WhatsApp.
func (t *Template) WantsWhatsApp() bool {
	return t.NotificationMethod == MethodWhatsApp || t.NotificationMethod == MethodBoth
}

// WantsEmail reports whether the template's channel config includes email.
func (t *Template) WantsEmail() bool {
	return t.NotificationMethod == MethodEmail || t.NotificationMethod == MethodBoth
}

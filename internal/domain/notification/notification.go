package notification

import (
	"context"
	"errors"
	"time"
)

// Channel identifies a delivery channel.
type Channel string

const (
	ChannelWhatsApp Channel = "WHATSAPP"
	ChannelEmail    Channel = "EMAIL"
)

var ErrMissingContact = errors.New("end user has no contact info for this channel")

// Message is one rendered reminder ready for delivery.
type Message struct {
	Recipient   string
	Subject     string
	Body        string
	PaymentLink string
}

// Sender delivers a message over one channel and returns the provider-side
// message ID when available.
type Sender interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}

// DispatchResult records the outcome of one channel attempt. A dispatch over
// BOTH channels yields two results; partial failure is not fatal.
type DispatchResult struct {
	Channel   Channel `json:"channel"`
	Success   bool    `json:"success"`
	MessageID string  `json:"message_id,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Log is a persisted record of one notification attempt.
type Log struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	EndUserID    string    `json:"end_user_id"`
	PaymentID    string    `json:"payment_id"`
	Channel      Channel   `json:"channel"`
	Recipient    string    `json:"recipient"`
	Subject      string    `json:"subject"`
	Content      string    `json:"content"`
	Status       string    `json:"status"` // sent | failed
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogRepository persists notification attempts.
type LogRepository interface {
	Create(ctx context.Context, l Log) error
	ListByPayment(ctx context.Context, paymentID, clientID string) ([]Log, error)
}

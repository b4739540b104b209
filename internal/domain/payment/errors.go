package payment

import "errors"

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrNoActivePayment     = errors.New("no pending or overdue payment for subscription")
	ErrMethodNotConfigured = errors.New("template has no payment method configured")
	ErrAlreadyPaid         = errors.New("payment is already marked as paid")
	ErrUnknownGatewayEvent = errors.New("unknown gateway event")
)

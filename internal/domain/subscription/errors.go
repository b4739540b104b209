package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrDuplicateActive      = errors.New("active subscription already exists for this user and template")
	ErrNotActive            = errors.New("only active subscriptions can be paused")
	ErrNotPaused            = errors.New("only paused subscriptions can be resumed")
	ErrAlreadyCancelled     = errors.New("subscription is already cancelled")
	ErrHasPaymentHistory    = errors.New("cannot delete subscription with payment history; cancel it instead")
)

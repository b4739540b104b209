package client

import (
	"context"
	"errors"
	"time"
)

// Client is a tenant business. Templates, end users, subscriptions, payments
// and tasks are all partitioned by ClientID.
type Client struct {
	ID           string    `json:"id"`
	BusinessName string    `json:"business_name"`
	Email        string    `json:"email"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var ErrClientNotFound = errors.New("client not found")

// Repository handles client data operations. The billing core only reads
// clients; account management lives outside this service.
type Repository interface {
	GetByID(ctx context.Context, id string) (Client, error)
}

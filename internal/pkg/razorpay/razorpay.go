package razorpay

import (
	"context"
	"fmt"

	razorpaySDK "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/duetap/duetap-backend-go/internal/config"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
)

var hundred = decimal.NewFromInt(100)

// Client wraps the official Razorpay SDK as a payment.LinkGenerator
type Client struct {
	sdk *razorpaySDK.Client

	// The SDK takes no context; the call runs behind this func so
	// CreateLink can guard it with the caller's deadline.
	create func(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

func NewClient(cfg config.RazorpayConfig) *Client {
	sdk := razorpaySDK.NewClient(cfg.KeyID, cfg.KeySecret)
	return &Client{
		sdk:    sdk,
		create: sdk.PaymentLink.Create,
	}
}

func (c *Client) CreateLink(ctx context.Context, req payment.LinkRequest) (payment.LinkResult, error) {
	// Razorpay amounts are in the currency's smallest unit (paise for INR).
	amount := req.Amount.Mul(hundred).IntPart()

	data := map[string]interface{}{
		"amount":      amount,
		"currency":    req.Currency,
		"description": req.Description,
		"customer": map[string]interface{}{
			"name":    req.CustomerName,
			"email":   req.CustomerEmail,
			"contact": req.CustomerPhone,
		},
		"notify": map[string]interface{}{
			"sms":   true,
			"email": true,
		},
		"notes": map[string]interface{}{
			"client_id": req.ClientID,
		},
	}

	body, err := c.createWithDeadline(ctx, data)
	if err != nil {
		return payment.LinkResult{}, fmt.Errorf("razorpay payment link create: %w", err)
	}

	result := payment.LinkResult{}
	if id, ok := body["id"].(string); ok {
		result.ProviderLinkID = id
	}
	if url, ok := body["short_url"].(string); ok {
		result.URL = url
	}
	if status, ok := body["status"].(string); ok {
		result.ProviderStatus = status
	}
	if result.URL == "" {
		return payment.LinkResult{}, fmt.Errorf("razorpay payment link create: response missing short_url")
	}
	return result, nil
}

// createWithDeadline bounds the SDK call by ctx so a hung gateway request
// cannot stall a billing cycle past the configured gateway timeout.
func (c *Client) createWithDeadline(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	type outcome struct {
		body map[string]interface{}
		err  error
	}

	done := make(chan outcome, 1)
	go func() {
		body, err := c.create(data, nil)
		done <- outcome{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.body, out.err
	}
}

package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// LinkRequest describes a hosted payment link to create with an external
// provider.
type LinkRequest struct {
	ClientID      string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// LinkResult is the provider's answer: a URL the end user can pay at plus
// the provider-side identifier used to correlate webhook events later.
type LinkResult struct {
	URL            string
	ProviderLinkID string
	ProviderStatus string
}

// LinkGenerator creates hosted payment links. One implementation per
// provider; the billing service picks one by the template's payment method.
type LinkGenerator interface {
	CreateLink(ctx context.Context, req LinkRequest) (LinkResult, error)
}

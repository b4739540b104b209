package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	stripeSDK "github.com/stripe/stripe-go/v82"
	stripeClient "github.com/stripe/stripe-go/v82/client"

	"github.com/duetap/duetap-backend-go/internal/config"
	"github.com/duetap/duetap-backend-go/internal/domain/payment"
)

var hundred = decimal.NewFromInt(100)

// Client wraps the official Stripe SDK as a payment.LinkGenerator
type Client struct {
	api *stripeClient.API
}

func NewClient(cfg config.StripeConfig) *Client {
	api := &stripeClient.API{}
	api.Init(cfg.SecretKey, nil)
	return &Client{api: api}
}

// CreateLink builds a Stripe payment link: product, then price, then link.
// Stripe has no single-call equivalent of a priced link.
func (c *Client) CreateLink(ctx context.Context, req payment.LinkRequest) (payment.LinkResult, error) {
	productParams := &stripeSDK.ProductParams{
		Name: stripeSDK.String(req.Description),
	}
	productParams.Context = ctx
	product, err := c.api.Products.New(productParams)
	if err != nil {
		return payment.LinkResult{}, fmt.Errorf("stripe product create: %w", err)
	}

	// Stripe amounts are in the currency's smallest unit.
	amount := req.Amount.Mul(hundred).IntPart()

	priceParams := &stripeSDK.PriceParams{
		Product:    stripeSDK.String(product.ID),
		UnitAmount: stripeSDK.Int64(amount),
		Currency:   stripeSDK.String(strings.ToLower(req.Currency)),
	}
	priceParams.Context = ctx
	price, err := c.api.Prices.New(priceParams)
	if err != nil {
		return payment.LinkResult{}, fmt.Errorf("stripe price create: %w", err)
	}

	linkParams := &stripeSDK.PaymentLinkParams{
		LineItems: []*stripeSDK.PaymentLinkLineItemParams{
			{
				Price:    stripeSDK.String(price.ID),
				Quantity: stripeSDK.Int64(1),
			},
		},
	}
	linkParams.Context = ctx
	linkParams.AddMetadata("client_id", req.ClientID)
	link, err := c.api.PaymentLinks.New(linkParams)
	if err != nil {
		return payment.LinkResult{}, fmt.Errorf("stripe payment link create: %w", err)
	}

	return payment.LinkResult{
		URL:            link.URL,
		ProviderLinkID: link.ID,
		ProviderStatus: "created",
	}, nil
}

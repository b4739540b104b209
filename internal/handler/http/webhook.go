package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/handler/http/response"
	paymentservice "github.com/duetap/duetap-backend-go/internal/service/payment"
)

// WebhookHandler consumes payment-gateway callbacks
type WebhookHandler interface {
	HandleRazorpay(w http.ResponseWriter, r *http.Request)
	HandleStripe(w http.ResponseWriter, r *http.Request)
}

type webhookHandlerImpl struct {
	paymentService *paymentservice.Service
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(paymentService *paymentservice.Service) WebhookHandler {
	return &webhookHandlerImpl{paymentService: paymentService}
}

type razorpayWebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		PaymentLink struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// HandleRazorpay applies payment_link.* events
// POST /webhooks/razorpay
func (h *webhookHandlerImpl) HandleRazorpay(w http.ResponseWriter, r *http.Request) {
	var payload razorpayWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.BadRequest(w, "invalid webhook payload", nil)
		return
	}

	var event payment.GatewayEvent
	switch payload.Event {
	case "payment_link.paid":
		event = payment.EventPaid
	case "payment_link.cancelled", "payment_link.expired":
		event = payment.EventCancelled
	default:
		// Unsubscribed event type; acknowledge so the gateway stops retrying.
		response.Success(w, nil)
		return
	}

	occurredAt := time.Now()
	if payload.CreatedAt > 0 {
		occurredAt = time.Unix(payload.CreatedAt, 0)
	}

	if err := h.paymentService.ApplyGatewayEvent(r.Context(), payload.Payload.PaymentLink.Entity.ID, event, occurredAt); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, nil)
}

type stripeWebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID          string `json:"id"`
			PaymentLink string `json:"payment_link"`
		} `json:"object"`
	} `json:"data"`
	Created int64 `json:"created"`
}

// HandleStripe applies checkout/payment-link events
// POST /webhooks/stripe
func (h *webhookHandlerImpl) HandleStripe(w http.ResponseWriter, r *http.Request) {
	var payload stripeWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.BadRequest(w, "invalid webhook payload", nil)
		return
	}

	var event payment.GatewayEvent
	switch payload.Type {
	case "checkout.session.completed":
		event = payment.EventPaid
	case "checkout.session.expired":
		event = payment.EventCancelled
	case "checkout.session.async_payment_failed":
		event = payment.EventFailed
	default:
		response.Success(w, nil)
		return
	}

	// Checkout sessions reference the payment link they were started from.
	linkID := payload.Data.Object.PaymentLink
	if linkID == "" {
		linkID = payload.Data.Object.ID
	}

	occurredAt := time.Now()
	if payload.Created > 0 {
		occurredAt = time.Unix(payload.Created, 0)
	}

	if err := h.paymentService.ApplyGatewayEvent(r.Context(), linkID, event, occurredAt); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, nil)
}

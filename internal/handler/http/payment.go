package http

import (
	"encoding/json"
	"net/http"

	paymentdomain "github.com/duetap/duetap-backend-go/internal/domain/payment"
	"github.com/duetap/duetap-backend-go/internal/handler/http/response"
	paymentservice "github.com/duetap/duetap-backend-go/internal/service/payment"
	"github.com/go-chi/chi/v5"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	MarkAsPaid(w http.ResponseWriter, r *http.Request)
	ListNotifications(w http.ResponseWriter, r *http.Request)
}

type paymentHandlerImpl struct {
	paymentService *paymentservice.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *paymentservice.Service) PaymentHandler {
	return &paymentHandlerImpl{paymentService: paymentService}
}

// List retrieves the client's payments
// GET /api/v1/payments
func (h *paymentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	payments, err := h.paymentService.List(r.Context(), clientID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payments)
}

// Get retrieves one payment
// GET /api/v1/payments/{id}
func (h *paymentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	p, err := h.paymentService.Get(r.Context(), clientID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, p)
}

// MarkAsPaid records an out-of-band payment
// POST /api/v1/payments/{id}/mark-paid
func (h *paymentHandlerImpl) MarkAsPaid(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	var req paymentdomain.MarkAsPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	p, err := h.paymentService.MarkAsPaid(r.Context(), clientID, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment marked as paid", p)
}

// ListNotifications retrieves the notification history for a payment
// GET /api/v1/payments/{id}/notifications
func (h *paymentHandlerImpl) ListNotifications(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	logs, err := h.paymentService.ListNotifications(r.Context(), clientID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, logs)
}

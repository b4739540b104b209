package http

import (
	"encoding/json"
	"net/http"

	"github.com/duetap/duetap-backend-go/internal/domain/subscription"
	"github.com/duetap/duetap-backend-go/internal/handler/http/middleware"
	"github.com/duetap/duetap-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// SubscriptionHandler handles subscription-related HTTP requests
type SubscriptionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Pause(w http.ResponseWriter, r *http.Request)
	Resume(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ResendNotification(w http.ResponseWriter, r *http.Request)
}

type subscriptionHandlerImpl struct {
	subscriptionService subscription.Service
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService subscription.Service) SubscriptionHandler {
	return &subscriptionHandlerImpl{subscriptionService: subscriptionService}
}

func clientIDFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	clientID, ok := middleware.ClientIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "no client associated with this token")
	}
	return clientID, ok
}

// Create enrolls an end user into a template's recurring schedule
// POST /api/v1/subscriptions
func (h *subscriptionHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	var req subscription.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	sub, err := h.subscriptionService.Create(r.Context(), clientID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Subscription created", sub)
}

// Get retrieves one subscription
// GET /api/v1/subscriptions/{id}
func (h *subscriptionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Get(r.Context(), clientID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, sub)
}

// List retrieves the client's subscriptions
// GET /api/v1/subscriptions
func (h *subscriptionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	subs, err := h.subscriptionService.List(r.Context(), clientID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, subs)
}

// Pause pauses an active subscription
// POST /api/v1/subscriptions/{id}/pause
func (h *subscriptionHandlerImpl) Pause(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.subscriptionService.Pause(r.Context(), clientID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Subscription paused", nil)
}

// Resume resumes a paused subscription
// POST /api/v1/subscriptions/{id}/resume
func (h *subscriptionHandlerImpl) Resume(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.subscriptionService.Resume(r.Context(), clientID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Subscription resumed", nil)
}

// Cancel cancels a subscription and its pending payments
// POST /api/v1/subscriptions/{id}/cancel
func (h *subscriptionHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.subscriptionService.Cancel(r.Context(), clientID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Subscription cancelled", nil)
}

// Delete removes a subscription without payment history
// DELETE /api/v1/subscriptions/{id}
func (h *subscriptionHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.subscriptionService.Delete(r.Context(), clientID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Subscription deleted", nil)
}

// ResendNotification re-sends the reminder for the earliest outstanding payment
// POST /api/v1/subscriptions/{id}/resend-notification
func (h *subscriptionHandlerImpl) ResendNotification(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.subscriptionService.ResendNotification(r.Context(), clientID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notification resent", nil)
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/duetap/duetap-backend-go/internal/domain/enduser"
	"github.com/duetap/duetap-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// EndUserHandler handles end-user-related HTTP requests
type EndUserHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type endUserHandlerImpl struct {
	endUserService enduser.Service
}

// NewEndUserHandler creates a new end-user handler
func NewEndUserHandler(endUserService enduser.Service) EndUserHandler {
	return &endUserHandlerImpl{endUserService: endUserService}
}

// Create registers an end user
// POST /api/v1/end-users
func (h *endUserHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	var req enduser.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	user, err := h.endUserService.Create(r.Context(), clientID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "End user created", user)
}

// Get retrieves one end user
// GET /api/v1/end-users/{id}
func (h *endUserHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	user, err := h.endUserService.Get(r.Context(), clientID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, user)
}

// List retrieves the client's end users
// GET /api/v1/end-users
func (h *endUserHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	users, err := h.endUserService.List(r.Context(), clientID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, users)
}

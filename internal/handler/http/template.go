package http

import (
	"encoding/json"
	"net/http"

	"github.com/duetap/duetap-backend-go/internal/domain/template"
	"github.com/duetap/duetap-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// TemplateHandler handles template-related HTTP requests
type TemplateHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Activate(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)
}

type templateHandlerImpl struct {
	templateService template.Service
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService template.Service) TemplateHandler {
	return &templateHandlerImpl{templateService: templateService}
}

// Create creates a reminder template
// POST /api/v1/templates
func (h *templateHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	var req template.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	tmpl, err := h.templateService.Create(r.Context(), clientID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Template created", tmpl)
}

// Get retrieves one template
// GET /api/v1/templates/{id}
func (h *templateHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	tmpl, err := h.templateService.Get(r.Context(), clientID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, tmpl)
}

// List retrieves the client's templates
// GET /api/v1/templates
func (h *templateHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	templates, err := h.templateService.List(r.Context(), clientID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, templates)
}

// Activate re-enables a template for new subscriptions
// POST /api/v1/templates/{id}/activate
func (h *templateHandlerImpl) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "Template activated")
}

// Deactivate disables a template without active subscriptions
// POST /api/v1/templates/{id}/deactivate
func (h *templateHandlerImpl) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "Template deactivated")
}

func (h *templateHandlerImpl) setActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.templateService.SetActive(r.Context(), clientID, chi.URLParam(r, "id"), active); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, nil)
}

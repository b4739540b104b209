package http

import (
	"net/http"
	"strconv"

	"github.com/duetap/duetap-backend-go/internal/domain/task"
	"github.com/duetap/duetap-backend-go/internal/handler/http/response"
	"github.com/duetap/duetap-backend-go/internal/service/reminder"
	"github.com/go-chi/chi/v5"
)

// TaskHandler handles reminder task HTTP requests
type TaskHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Dispatch(w http.ResponseWriter, r *http.Request)
}

type taskHandlerImpl struct {
	taskRepo        task.Repository
	reminderService *reminder.Service
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo task.Repository, reminderService *reminder.Service) TaskHandler {
	return &taskHandlerImpl{taskRepo: taskRepo, reminderService: reminderService}
}

// List retrieves the client's tasks, optionally filtered on ?sent=true|false
// GET /api/v1/tasks
func (h *taskHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	var isSent *bool
	if raw := r.URL.Query().Get("sent"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "sent must be true or false", nil)
			return
		}
		isSent = &parsed
	}

	tasks, err := h.taskRepo.ListByClient(r.Context(), clientID, isSent)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, tasks)
}

// Get retrieves one task
// GET /api/v1/tasks/{id}
func (h *taskHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	t, err := h.taskRepo.GetByID(r.Context(), chi.URLParam(r, "id"), clientID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, t)
}

// Dispatch manually sends one unsent reminder task
// POST /api/v1/tasks/{id}/dispatch
func (h *taskHandlerImpl) Dispatch(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromRequest(w, r)
	if !ok {
		return
	}

	results, err := h.reminderService.DispatchTask(r.Context(), clientID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reminder dispatched", results)
}

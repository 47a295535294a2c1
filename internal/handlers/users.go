package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	"github.com/BradenHooton/bizadmin/internal/services"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UserService defines the principal administration used by UserHandler
type UserService interface {
	Create(ctx context.Context, in services.CreatePrincipalInput) (*models.Principal, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Principal, error)
	Query(ctx context.Context, req query.Request) (query.PagedResult[*models.Principal], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PrincipalStatus) (*models.Principal, error)
	Unlock(ctx context.Context, id uuid.UUID) error
}

// UserHandler handles principal administration requests
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers all user routes with the chi router. Callers
// guard the group with the admin role.
func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)               // POST /users
		r.Get("/", h.ListUsers)                 // GET /users
		r.Post("/query", h.QueryUsers)          // POST /users/query
		r.Get("/{id}", h.GetUser)               // GET /users/{id}
		r.Patch("/{id}/status", h.UpdateStatus) // PATCH /users/{id}/status
		r.Post("/{id}/unlock", h.UnlockUser)    // POST /users/{id}/unlock
	})
}

// CreateUser creates a principal
//
// @Summary Create principal
// @Accept json
// @Param request body CreatePrincipalRequest true "Principal"
// @Produce json
// @Success 201 {object} PrincipalResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 409 {object} pkghttp.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreatePrincipalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), services.CreatePrincipalInput{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        req.Role,
	})
	if err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, principalResponse(p))
}

// ListUsers lists principals from query string parameters
//
// @Summary List principals
// @Param pageNumber query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 10, max 100)"
// @Param searchTerm query string false "Free text search"
// @Param sortBy query string false "Sort field"
// @Param sortDirection query string false "Ascending or Descending"
// @Produce json
// @Success 200 {object} query.PagedResult[PrincipalResponse]
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	req, err := listRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	h.query(w, r, req)
}

// QueryUsers runs a dynamic query over principals
//
// @Summary Query principals
// @Accept json
// @Param request body query.Request true "Query"
// @Produce json
// @Success 200 {object} query.PagedResult[PrincipalResponse]
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /users/query [post]
func (h *UserHandler) QueryUsers(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQueryRequest(w, r)
	if !ok {
		return
	}
	h.query(w, r, req)
}

func (h *UserHandler) query(w http.ResponseWriter, r *http.Request, req query.Request) {
	page, err := h.service.Query(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, query.MapPage(page, principalResponse))
}

// GetUser retrieves a principal by ID
//
// @Summary Get principal by ID
// @Param id path string true "Principal ID"
// @Produce json
// @Success 200 {object} PrincipalResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, principalResponse(p))
}

// UpdateStatus activates, deactivates or suspends a principal
//
// @Summary Change principal status
// @Accept json
// @Param id path string true "Principal ID"
// @Param request body UpdateStatusRequest true "Status"
// @Produce json
// @Success 200 {object} PrincipalResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /users/{id}/status [patch]
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	var req UpdateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.service.UpdateStatus(r.Context(), id, models.PrincipalStatus(req.Status))
	if err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, principalResponse(p))
}

// UnlockUser clears the lockout of a principal
//
// @Summary Unlock principal
// @Param id path string true "Principal ID"
// @Success 204
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /users/{id}/unlock [post]
func (h *UserHandler) UnlockUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	if err := h.service.Unlock(r.Context(), id); err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

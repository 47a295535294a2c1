package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/services"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	invalidCredentialsMsg = "Invalid username or password."
	authRequiredMsg       = "Authentication required"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, identifier, password string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	Revoke(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, principalID uuid.UUID, current, next string) error
}

// PrincipalReader loads the principal behind an access token
type PrincipalReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Principal, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service    AuthServiceInterface
	principals PrincipalReader
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, principals PrincipalReader) *AuthHandler {
	return &AuthHandler{service: service, principals: principals}
}

// Request DTOs

// LoginRequest represents the request body for login. Username may also
// be the email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// RefreshTokenRequest is the body of refresh and revoke
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,max=256"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=128"`
	NewPassword     string `json:"newPassword" validate:"required,max=128"`
}

// RegisterPublicRoutes registers the unauthenticated auth routes. limit is
// applied to login and refresh.
func (h *AuthHandler) RegisterPublicRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.With(limit).Post("/auth/login", h.Login)
	r.With(limit).Post("/auth/refresh", h.Refresh)
	r.Post("/auth/revoke", h.Revoke)
}

// RegisterRoutes registers the auth routes that need a bearer token
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/change-password", h.ChangePassword)
	r.Get("/auth/me", h.Me)
}

// Login handles principal login
// @Summary Login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} services.Session
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 403 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err, invalidCredentialsMsg)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, session)
}

// Refresh exchanges a refresh token for a new session
// @Summary Refresh session
// @Accept json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Produce json
// @Success 200 {object} services.Session
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 403 {object} pkghttp.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err, "Invalid or expired refresh token.")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, session)
}

// Revoke invalidates a refresh token
// @Summary Revoke refresh token
// @Accept json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 204
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /auth/revoke [post]
func (h *AuthHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Revoke(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, err, "Invalid refresh token.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword changes the password of the calling principal
// @Summary Change password
// @Accept json
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 204
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.ActorID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, authRequiredMsg)
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, err, "Current password is incorrect.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the calling principal
// @Summary Current principal
// @Produce json
// @Success 200 {object} services.PrincipalSummary
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.ActorID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, authRequiredMsg)
		return
	}

	p, err := h.principals.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, services.NewPrincipalSummary(p))
}

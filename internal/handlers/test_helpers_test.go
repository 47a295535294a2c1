package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	"github.com/BradenHooton/bizadmin/internal/services"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithActor marks the request as made by principalID
func WithActor(req *http.Request, principalID uuid.UUID) *http.Request {
	return req.WithContext(auth.WithActor(req.Context(), principalID))
}

// WithURLParam sets a chi URL parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response and
// returns it for further checks
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedCode string) pkghttp.ErrorResponse {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode error response")
	assert.Equal(t, expectedCode, resp.Code, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc          func(ctx context.Context, identifier, password string) (*services.Session, error)
	RefreshFunc        func(ctx context.Context, refreshToken string) (*services.Session, error)
	RevokeFunc         func(ctx context.Context, refreshToken string) error
	ChangePasswordFunc func(ctx context.Context, principalID uuid.UUID, current, next string) error
}

func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (*services.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*services.Session, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Revoke(ctx context.Context, refreshToken string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, refreshToken)
	}
	return nil
}

func (m *MockAuthService) ChangePassword(ctx context.Context, principalID uuid.UUID, current, next string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, principalID, current, next)
	}
	return nil
}

// MockUserService implements UserService and PrincipalReader for testing
type MockUserService struct {
	CreateFunc       func(ctx context.Context, in services.CreatePrincipalInput) (*models.Principal, error)
	GetFunc          func(ctx context.Context, id uuid.UUID) (*models.Principal, error)
	QueryFunc        func(ctx context.Context, req query.Request) (query.PagedResult[*models.Principal], error)
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, status models.PrincipalStatus) (*models.Principal, error)
	UnlockFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *MockUserService) Create(ctx context.Context, in services.CreatePrincipalInput) (*models.Principal, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) Get(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) Query(ctx context.Context, req query.Request) (query.PagedResult[*models.Principal], error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, req)
	}
	return query.NewPagedResult[*models.Principal](nil, 0, req.PageNumber, req.PageSize), nil
}

func (m *MockUserService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PrincipalStatus) (*models.Principal, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) Unlock(ctx context.Context, id uuid.UUID) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, id)
	}
	return nil
}

// MockCatalogService implements CatalogService for testing
type MockCatalogService[T any] struct {
	QueryFunc  func(ctx context.Context, req query.Request) (query.PagedResult[T], error)
	GetFunc    func(ctx context.Context, id uuid.UUID) (T, error)
	CreateFunc func(ctx context.Context, v T) (T, error)
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *MockCatalogService[T]) Query(ctx context.Context, req query.Request) (query.PagedResult[T], error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, req)
	}
	return query.NewPagedResult[T](nil, 0, req.PageNumber, req.PageSize), nil
}

func (m *MockCatalogService[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	var zero T
	return zero, models.ErrNotFound
}

func (m *MockCatalogService[T]) Create(ctx context.Context, v T) (T, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, v)
	}
	return v, nil
}

func (m *MockCatalogService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

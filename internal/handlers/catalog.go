package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CatalogService is the business logic behind a CatalogHandler
type CatalogService[T any] interface {
	Query(ctx context.Context, req query.Request) (query.PagedResult[T], error)
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// createRequest is a create DTO that converts into the entity
type createRequest[T any] interface {
	toModel() (T, error)
}

// CatalogHandler serves list, query, get, create and delete for one catalog
// entity. T is the entity, C the create request body and R the response.
type CatalogHandler[T any, C createRequest[T], R any] struct {
	service CatalogService[T]
	respond func(T) R
}

func NewCountryHandler(service CatalogService[*models.Country]) *CatalogHandler[*models.Country, CreateCountryRequest, CountryResponse] {
	return &CatalogHandler[*models.Country, CreateCountryRequest, CountryResponse]{service: service, respond: countryResponse}
}

func NewCurrencyHandler(service CatalogService[*models.Currency]) *CatalogHandler[*models.Currency, CreateCurrencyRequest, CurrencyResponse] {
	return &CatalogHandler[*models.Currency, CreateCurrencyRequest, CurrencyResponse]{service: service, respond: currencyResponse}
}

func NewProductHandler(service CatalogService[*models.Product]) *CatalogHandler[*models.Product, CreateProductRequest, ProductResponse] {
	return &CatalogHandler[*models.Product, CreateProductRequest, ProductResponse]{service: service, respond: productResponse}
}

// RegisterRoutes mounts the handler under path. Reads need only a bearer
// token; admin guards create and delete.
func (h *CatalogHandler[T, C, R]) RegisterRoutes(router chi.Router, path string, admin func(http.Handler) http.Handler) {
	router.Route(path, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/query", h.Query)
		r.Get("/{id}", h.Get)
		r.With(admin).Post("/", h.Create)
		r.With(admin).Delete("/{id}", h.Delete)
	})
}

// List pages through records using query string parameters
func (h *CatalogHandler[T, C, R]) List(w http.ResponseWriter, r *http.Request) {
	req, err := listRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	h.run(w, r, req)
}

// Query runs a dynamic query body
func (h *CatalogHandler[T, C, R]) Query(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQueryRequest(w, r)
	if !ok {
		return
	}
	h.run(w, r, req)
}

func (h *CatalogHandler[T, C, R]) run(w http.ResponseWriter, r *http.Request, req query.Request) {
	page, err := h.service.Query(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, query.MapPage(page, h.respond))
}

func (h *CatalogHandler[T, C, R]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, h.respond(v))
}

func (h *CatalogHandler[T, C, R]) Create(w http.ResponseWriter, r *http.Request) {
	var req C
	if !decodeAndValidate(w, r, &req) {
		return
	}

	v, err := req.toModel()
	if err != nil {
		writeRequestError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), v)
	if err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, h.respond(created))
}

// Delete soft-deletes a record
func (h *CatalogHandler[T, C, R]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, authRequiredMsg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

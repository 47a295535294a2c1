package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	"github.com/go-chi/chi/v5"
)

// ReferenceService serves the static reference lists
type ReferenceService interface {
	TimeZones(ctx context.Context, req query.Request) query.PagedResult[models.TimeZone]
	DateFormats(ctx context.Context, req query.Request) query.PagedResult[models.DateFormat]
}

// ReferenceHandler exposes time zones and date formats
type ReferenceHandler struct {
	service ReferenceService
}

func NewReferenceHandler(service ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

func (h *ReferenceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/time-zones", h.ListTimeZones)
	r.Post("/time-zones/query", h.QueryTimeZones)
	r.Get("/date-formats", h.ListDateFormats)
	r.Post("/date-formats/query", h.QueryDateFormats)
}

func (h *ReferenceHandler) ListTimeZones(w http.ResponseWriter, r *http.Request) {
	if req, ok := h.list(w, r); ok {
		h.writeTimeZones(w, r, req)
	}
}

func (h *ReferenceHandler) QueryTimeZones(w http.ResponseWriter, r *http.Request) {
	if req, ok := decodeQueryRequest(w, r); ok {
		h.writeTimeZones(w, r, req)
	}
}

func (h *ReferenceHandler) ListDateFormats(w http.ResponseWriter, r *http.Request) {
	if req, ok := h.list(w, r); ok {
		h.writeDateFormats(w, r, req)
	}
}

func (h *ReferenceHandler) QueryDateFormats(w http.ResponseWriter, r *http.Request) {
	if req, ok := decodeQueryRequest(w, r); ok {
		h.writeDateFormats(w, r, req)
	}
}

func (h *ReferenceHandler) list(w http.ResponseWriter, r *http.Request) (query.Request, bool) {
	req, err := listRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return req, false
	}
	return req, true
}

func (h *ReferenceHandler) writeTimeZones(w http.ResponseWriter, r *http.Request, req query.Request) {
	page := h.service.TimeZones(r.Context(), req)
	pkghttp.WriteJSON(w, http.StatusOK, query.MapPage(page, timeZoneResponse))
}

func (h *ReferenceHandler) writeDateFormats(w http.ResponseWriter, r *http.Request, req query.Request) {
	page := h.service.DateFormats(r.Context(), req)
	pkghttp.WriteJSON(w, http.StatusOK, query.MapPage(page, dateFormatResponse))
}

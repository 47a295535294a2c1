package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// decodeQueryRequest reads a POST /query body. Omitted paging falls back to
// page 1 of 10; structural limits are enforced, field names are not.
func decodeQueryRequest(w http.ResponseWriter, r *http.Request) (query.Request, bool) {
	var req query.Request
	if r.ContentLength != 0 {
		if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
			pkghttp.WriteBadRequest(w, err.Error())
			return req, false
		}
	}
	req = req.WithDefaults()
	if err := ValidateRequest(req); err != nil {
		writeRequestError(w, err)
		return req, false
	}
	return req, true
}

// listRequest builds a query from GET list parameters:
// pageNumber, pageSize, searchTerm, sortBy and sortDirection.
func listRequest(r *http.Request) (query.Request, error) {
	q := r.URL.Query()
	var req query.Request

	for name, dst := range map[string]*int{"pageNumber": &req.PageNumber, "pageSize": &req.PageSize} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, models.NewValidationError(name, "must be an integer")
		}
		*dst = n
	}

	req.SearchTerm = strings.TrimSpace(q.Get("searchTerm"))

	if sortBy := strings.TrimSpace(q.Get("sortBy")); sortBy != "" {
		dir := query.Ascending
		if raw := q.Get("sortDirection"); raw != "" {
			d, ok := query.ParseDirection(raw)
			if !ok {
				return req, models.NewValidationError("sortDirection", "must be Ascending or Descending")
			}
			dir = d
		}
		req.Sorts = []query.Sort{{Field: sortBy, Direction: dir}}
	}

	req = req.WithDefaults()
	if err := ValidateRequest(req); err != nil {
		return req, err
	}
	return req, nil
}

// pathID parses the {id} URL parameter
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NewValidationError("id", fmt.Sprintf("%q is not a valid UUID", raw))
	}
	return id, nil
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/BradenHooton/bizadmin/internal/models"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
)

// writeServiceError maps a service error to the uniform error response.
// unauthorizedMsg is used for ErrUnauthorized so credential failures read
// the same whatever the cause.
func writeServiceError(w http.ResponseWriter, err error, unauthorizedMsg string) {
	var ve *models.ValidationError
	var locked *models.LockedError
	var status *models.AccountStatusError

	switch {
	case errors.As(err, &ve):
		pkghttp.WriteValidationError(w, ve.Error(), ve.Fields)
	case errors.As(err, &locked):
		pkghttp.WriteForbidden(w, locked.Error())
	case errors.As(err, &status):
		pkghttp.WriteForbidden(w, status.Error())
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, unauthorizedMsg)
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "You do not have permission to perform this action.")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found.")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "A record with the same unique value already exists.")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "The request references missing or invalid data.")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// writeRequestError reports a decode or validation failure
func writeRequestError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		pkghttp.WriteValidationError(w, ve.Error(), ve.Fields)
		return
	}
	pkghttp.WriteBadRequest(w, err.Error())
}

// decodeAndValidate reads a JSON body into dst and validates it
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := pkghttp.DecodeJSON(w, r, dst); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	if err := ValidateRequest(dst); err != nil {
		writeRequestError(w, err)
		return false
	}
	return true
}

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/go-playground/validator/v10"
)

// Global validator instance (reused across all handlers). Field names in
// errors follow the JSON tags so details line up with the request body.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateRequest validates a request struct using go-playground/validator.
// Every failing field is reported in the returned *models.ValidationError.
func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := &models.ValidationError{
		Message: "One or more fields are invalid",
		Fields:  make(map[string][]string, len(ve)),
	}
	for _, fe := range ve {
		field := fieldPath(fe)
		out.Fields[field] = append(out.Fields[field], formatValidationError(fe))
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace,
// e.g. "Request.filters[0].columnName" becomes "filters[0].columnName".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "alpha":
		return "must contain letters only"
	case "uppercase":
		return "must be upper case"
	case "datetime":
		return fmt.Sprintf("must match the format %s", fe.Param())
	case "numeric":
		return "must be numeric"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

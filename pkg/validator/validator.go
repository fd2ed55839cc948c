package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/havenops/stockledger/pkg/httpx"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		// ignore unexported or explicitly ignored
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors converts validator.ValidationErrors into a map of
// JSON field name to human-readable message.
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = formatFieldError(e)
	}
	return errs
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(e.Param(), "'", ""))
	case "numeric":
		return "Must be a numeric value"
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

// typeMessage describes the JSON type a field expected.
func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "Must be a whole number"
	case reflect.Float32, reflect.Float64:
		return "Must be a number"
	case reflect.String:
		return "Must be a string"
	case reflect.Bool:
		return "Must be true or false"
	default:
		return "Has an invalid value"
	}
}

// ValidateRequest decodes the JSON request body into T, validates it, and
// writes an error envelope if either step fails:
//
//   - oversized body: 413
//   - empty or malformed JSON: 400
//   - a value of the wrong JSON type: 422 naming the field
//   - failed validation tags: 422 naming every failing field
//
// Returns (parsedStruct, true) on success or (nil, false) on failure.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var (
			tooBig  *http.MaxBytesError
			typeErr  *json.UnmarshalTypeError
		)
		switch {
		case errors.As(err, &tooBig):
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			httpx.Fail(w, http.StatusUnprocessableEntity, "invalid input", map[string]string{
				typeErr.Field: typeMessage(typeErr.Type),
			})
		case errors.Is(err, io.EOF):
			httpx.JSONError(w, http.StatusBadRequest, "request body is required")
		default:
			httpx.JSONError(w, http.StatusBadRequest, "invalid JSON")
		}
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "invalid input", FormatValidationErrors(err))
		return nil, false
	}
	return &req, true
}

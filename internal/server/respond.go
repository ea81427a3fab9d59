package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/motorrutas/pkg/editor"
	apperrors "github.com/matzehuels/motorrutas/pkg/errors"
	"github.com/matzehuels/motorrutas/pkg/session"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto an API error code and status.
func writeError(w http.ResponseWriter, err error) {
	e := toAPIError(err)
	writeJSON(w, e.Code.HTTPStatus(), errorBody{Error: errorDetail{Code: e.Code, Message: e.Message}})
}

func toAPIError(err error) *apperrors.Error {
	var e *apperrors.Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, session.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrCodeSessionNotFound, err, "session not found")
	case errors.Is(err, session.ErrExpired):
		return apperrors.Wrap(apperrors.ErrCodeSessionExpired, err, "session expired")
	case errors.Is(err, editor.ErrSuperseded):
		return apperrors.Wrap(apperrors.ErrCodeConflict, err, "a newer load replaced this one")
	case errors.Is(err, editor.ErrInvalidDirection):
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "%s", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "request timed out")
	default:
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "internal error")
	}
}

// decode reads a JSON body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidBody, err, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "%s", formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date (%s)", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

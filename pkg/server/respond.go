package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	ferrors "github.com/matzehuels/flownet/pkg/errors"
	"github.com/matzehuels/flownet/pkg/observability"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// writeError classifies err and writes it. Server-side failures are logged,
// reported to the HTTP hooks and queued on the lifecycle core.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	coded := ferrors.FromDomain(err)
	code := ferrors.GetCode(coded)
	status := ferrors.HTTPStatus(code)

	if status >= 500 {
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		observability.HTTP().OnError(r.Context(), r.Method, route, err)
		s.logger.Error("request failed", "method", r.Method, "route", route, "err", err)
		s.core.ReportError(err)
	}
	writeErrorBody(w, status, string(code), ferrors.UserMessage(coded))
}

// decode reads a JSON body into v and validates it. An empty body is
// accepted when optional is true.
func (s *Server) decode(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF) && optional:
		case errors.Is(err, io.EOF):
			return ferrors.New(ferrors.ErrCodeInvalidInput, "request body is empty")
		case errors.As(err, &maxErr):
			return ferrors.New(ferrors.ErrCodeInvalidInput, "request body exceeds %d bytes", maxErr.Limit)
		default:
			return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "malformed JSON: %v", err)
		}
	}
	if err := s.validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

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

// validationError joins field errors into one INVALID_INPUT error.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return ferrors.New(ferrors.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

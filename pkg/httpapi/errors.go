package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/session"
	"github.com/goliatone/go-doctemplate/pkg/validation"
)

// HTTPError carries its own status code.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with a status code.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func statusFor(err error) int {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.Is(err, orchestrator.ErrTemplateUnavailable),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, render.ErrRendererNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrStaleEdit), errors.Is(err, session.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownField),
		errors.Is(err, validation.ErrUnknownRole),
		errors.Is(err, render.ErrThemeNotFound):
		return http.StatusBadRequest
	}
	var fieldErr *session.FieldError
	var validationErr *session.ValidationError
	if errors.As(err, &fieldErr) || errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if code >= http.StatusInternalServerError {
		resp.Error = http.StatusText(code)
	}

	var fieldErr *session.FieldError
	var validationErr *session.ValidationError
	switch {
	case errors.As(err, &validationErr):
		resp.Fields = validationErr.Result.Errors
	case errors.As(err, &fieldErr):
		resp.Fields = map[string]string{fieldErr.Field: fieldErr.Message}
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

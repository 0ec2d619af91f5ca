// Package respond writes JSON responses and maps application errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var ErrMalformedBody = apperr.New(apperr.KindValidation, "MALFORMED_BODY", "request body is not valid JSON")

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as {"code", "message"}. Errors without an application
// code are logged and reported as a generic internal error.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		JSON(w, http.StatusInternalServerError, ErrorBody{Code: "INTERNAL", Message: "internal server error"})

		return
	}

	status := Status(e.Kind)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "code", e.Code, "error", err)
	}

	JSON(w, status, ErrorBody{Code: e.Code, Message: e.Message})
}

func Status(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindDependency:
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrMalformedBody.WithMessage("request body is empty")
		}

		return ErrMalformedBody.WithCause(err)
	}

	return nil
}

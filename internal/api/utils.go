package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

const maxBodyBytes = 64 << 10

// ErrorResponse writes the JSON error envelope carrying the request ID.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, map[string]any{
		"success":    false,
		"error":      message,
		"request_id": middleware.GetReqID(r.Context()),
	})
}

// WriteJSONResponse encodes data and writes it with the given status.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err = w.Write(js); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write response body",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// StatusForError maps the domain sentinel errors onto HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidRequest), errors.Is(err, types.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrMissingInput):
		return http.StatusNotFound
	case errors.Is(err, types.ErrMalformedInput), errors.Is(err, types.ErrMissingColumns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrMissingChatKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrChatFailed), errors.Is(err, types.ErrWeatherUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSONBody decodes a single JSON object from the request body into dst.
// Unknown fields and trailing data are rejected.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("%w: badly-formed JSON at character %d", types.ErrInvalidRequest, syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("%w: badly-formed JSON", types.ErrInvalidRequest)
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("%w: field %q must be %s", types.ErrInvalidRequest, unmarshalTypeError.Field, unmarshalTypeError.Type)
			}
			return fmt.Errorf("%w: wrong JSON type at character %d", types.ErrInvalidRequest, unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: body must not be empty", types.ErrInvalidRequest)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return fmt.Errorf("%w: unknown key %q", types.ErrInvalidRequest, field)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("%w: body must not be larger than %d bytes", types.ErrInvalidRequest, maxBytesError.Limit)
		default:
			return fmt.Errorf("%w: %w", types.ErrInvalidRequest, err)
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must only contain a single JSON value", types.ErrInvalidRequest)
	}
	return nil
}

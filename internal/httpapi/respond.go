package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

type response struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       any               `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Validation map[string]string `json:"validation,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Debug("write response", slog.String("error", err.Error()))
	}
}

// statusFor maps an error category onto the three response classes.
func statusFor(err error) int {
	var rich *goerrors.Error
	if errors.As(err, &rich) && rich.Code == http.StatusRequestEntityTooLarge {
		return rich.Code
	}
	switch {
	case goerrors.IsValidation(err), goerrors.IsCategory(err, goerrors.CategoryBadInput):
		return http.StatusBadRequest
	case goerrors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// messageFor picks the client message for err by the status it maps to.
func messageFor(err error, notFound, otherwise string) string {
	if statusFor(err) == http.StatusNotFound {
		return notFound
	}
	return otherwise
}

// fail logs err and writes {success:false, message, error}.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	body := response{Success: false, Message: message, Error: err.Error()}

	var rich *goerrors.Error
	if errors.As(err, &rich) {
		body.Error = rich.Message
		if rich.Source != nil {
			body.Error = rich.Message + ": " + rich.Source.Error()
		}
		body.Validation = rich.ValidationMap()
	}

	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
	}
	for _, a := range goerrors.ToSlogAttributes(err) {
		attrs = append(attrs, a)
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, append(attrs, slog.String("error", err.Error()))...)
	} else {
		h.logger.Info(message, attrs...)
	}

	writeJSON(w, status, body)
}

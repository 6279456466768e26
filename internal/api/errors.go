package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gramoorja/landedcost/internal/cost"
	"github.com/gramoorja/landedcost/internal/notification"
	"github.com/gramoorja/landedcost/internal/report"
	"github.com/gramoorja/landedcost/internal/session"
	"github.com/gramoorja/landedcost/internal/tariff"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var loadErr *tariff.LoadError
	var renderErr *report.RenderError
	switch {
	case errors.As(err, &loadErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, notification.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, tariff.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrMissingSelection), errors.Is(err, cost.ErrInvalidInput),
		errors.Is(err, notification.ErrInvalidRecipient):
		return http.StatusBadRequest
	case errors.As(err, &renderErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the text shown next to the form for err.
func userMessage(err error) string {
	switch {
	case errors.Is(err, tariff.ErrNotFound):
		return "No matching record found."
	case errors.Is(err, session.ErrMissingSelection):
		return "Please select both Connection Type and Sub Category."
	default:
		return err.Error()
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("api: %v", err)
	}
	writeJSON(w, status, errorBody{Error: userMessage(err)})
}

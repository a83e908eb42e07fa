package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/myrjola/wendler/internal/errors"
	"github.com/myrjola/wendler/internal/program"
	"github.com/myrjola/wendler/internal/workout"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v. It responds with 400 and returns false on failure.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		app.clientError(w, r, http.StatusBadRequest, fmt.Errorf("decode request body: %w", err))
		return false
	}
	return true
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "client error", slog.Int("status_code", status),
		errors.SlogError(err))
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (app *application) notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: http.StatusText(http.StatusNotFound)})
}

// handleError responds to a service error with the status matching its kind.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workout.ErrNotFound):
		app.clientError(w, r, http.StatusNotFound, err)
	case errors.Is(err, workout.ErrAlreadyInitialized), errors.Is(err, workout.ErrAlreadyRecorded):
		app.clientError(w, r, http.StatusConflict, err)
	case errors.Is(err, workout.ErrInvalidInput), errors.Is(err, workout.ErrUnknownExercise):
		app.clientError(w, r, http.StatusBadRequest, err)
	case errors.Is(err, program.ErrInvalidConfiguration):
		app.clientError(w, r, http.StatusUnprocessableEntity, err)
	default:
		app.serverError(w, r, err)
	}
}

// parseIDParam parses the "id" path parameter. On failure, it responds with 404.
func (app *application) parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		app.notFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

// parseLimit parses the optional "limit" query parameter. On failure, it responds with 400.
func (app *application) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 0 {
		app.clientError(w, r, http.StatusBadRequest, fmt.Errorf("invalid limit %q", s))
		return 0, false
	}
	return limit, true
}

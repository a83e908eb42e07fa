package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/myrjola/wendler/internal/progression"
	"github.com/myrjola/wendler/internal/workout"
)

type setupRequest struct {
	Lifts []workout.LiftSetup `json:"lifts"`
}

type liftResponse struct {
	Name  string                    `json:"name"`
	State progression.TrainingState `json:"state"`
}

type performanceRequest struct {
	Reps      int    `json:"reps"`
	Completed bool   `json:"completed"`
	Date      string `json:"date"`
	Notes     string `json:"notes"`
}

func (p performanceRequest) performance() (workout.Performance, error) {
	perf := workout.Performance{
		Reps:      p.Reps,
		Completed: p.Completed,
		Date:      time.Time{},
		Notes:     p.Notes,
	}
	if p.Date != "" {
		d, err := time.Parse(time.DateOnly, p.Date)
		if err != nil {
			return workout.Performance{}, fmt.Errorf("parse date: %w", err)
		}
		perf.Date = d
	}
	return perf, nil
}

type trainingMaxRequest struct {
	OneRepMax float64 `json:"one_rep_max"`
}

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (app *application) setupPOST(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if err := app.workoutService.Initialize(r.Context(), req.Lifts); err != nil {
		app.handleError(w, r, err)
		return
	}
	lifts, err := app.workoutService.Lifts(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lifts)
}

func (app *application) liftsGET(w http.ResponseWriter, r *http.Request) {
	lifts, err := app.workoutService.Lifts(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if lifts == nil {
		lifts = []workout.Lift{}
	}
	writeJSON(w, http.StatusOK, lifts)
}

func (app *application) liftGET(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "lift")
	state, err := app.workoutService.State(r.Context(), name)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, liftResponse{Name: name, State: state})
}

func (app *application) prescriptionGET(w http.ResponseWriter, r *http.Request) {
	p, err := app.workoutService.Prescribe(r.Context(), chi.URLParam(r, "lift"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (app *application) overviewGET(w http.ResponseWriter, r *http.Request) {
	prescriptions, err := app.workoutService.Overview(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if prescriptions == nil {
		prescriptions = []workout.Prescription{}
	}
	writeJSON(w, http.StatusOK, prescriptions)
}

func (app *application) workoutPOST(w http.ResponseWriter, r *http.Request) {
	var req performanceRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	perf, err := req.performance()
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	wo, err := app.workoutService.Complete(r.Context(), chi.URLParam(r, "lift"), perf)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

func (app *application) trainingMaxPUT(w http.ResponseWriter, r *http.Request) {
	var req trainingMaxRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	name := chi.URLParam(r, "lift")
	state, err := app.workoutService.UpdateTrainingMax(r.Context(), name, req.OneRepMax)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, liftResponse{Name: name, State: state})
}

func (app *application) workoutsGET(w http.ResponseWriter, r *http.Request) {
	limit, ok := app.parseLimit(w, r)
	if !ok {
		return
	}
	workouts, err := app.workoutService.History(r.Context(), limit)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if workouts == nil {
		workouts = []workout.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	wo, err := app.workoutService.Workout(r.Context(), id)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (app *application) workoutPUT(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	var req performanceRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	perf, err := req.performance()
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	wo, err := app.workoutService.Edit(r.Context(), id, perf)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (app *application) workoutDELETE(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	if err := app.workoutService.Delete(r.Context(), id); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

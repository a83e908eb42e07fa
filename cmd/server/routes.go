package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.logAndTraceRequest)
	r.Use(app.observeRequest)
	r.Use(app.recoverPanic)
	r.Use(cors.New(cors.Options{ //nolint:exhaustruct // defaults suffice for the rest.
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	r.Get("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}).ServeHTTP) //nolint:exhaustruct

	r.Route("/api", func(r chi.Router) {
		r.Use(app.timeout)
		r.Use(noCache)

		r.Get("/healthy", app.healthy)
		r.Post("/setup", app.setupPOST)
		r.Get("/overview", app.overviewGET)

		r.Route("/lifts", func(r chi.Router) {
			r.Get("/", app.liftsGET)
			r.Get("/{lift}", app.liftGET)
			r.Get("/{lift}/prescription", app.prescriptionGET)
			r.Post("/{lift}/workouts", app.workoutPOST)
			r.Put("/{lift}/training-max", app.trainingMaxPUT)
		})

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", app.workoutsGET)
			r.Get("/{id}", app.workoutGET)
			r.Put("/{id}", app.workoutPUT)
			r.Delete("/{id}", app.workoutDELETE)
		})
	})

	r.NotFound(app.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: http.StatusText(http.StatusMethodNotAllowed)})
	})

	return r
}

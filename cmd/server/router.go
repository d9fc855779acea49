package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/verdantlabs/flora-api/internal/api"
	apimiddleware "github.com/verdantlabs/flora-api/internal/api/middleware"
	"github.com/verdantlabs/flora-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(apimiddleware.CORSMiddleware)
	r.Use(apimiddleware.RecoveryMiddleware)
	r.Use(apimiddleware.IdentityMiddleware(app.config.Auth))
	r.Use(chimiddleware.Timeout(time.Duration(app.config.Server.RequestTimeoutSeconds) * time.Second))

	plantHandler := api.NewPlantHandler(app.resolutionService, app.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plants/detail", plantHandler.ResolveDetail)
	})

	r.Get("/healthz", app.healthz)

	return r
}

// healthz reports liveness, including a bounded database ping when a
// connection is wired.
func (app *application) healthz(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	api.Health(w, r)
}

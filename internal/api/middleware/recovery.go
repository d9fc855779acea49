package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/verdantlabs/flora-api/internal/api/shared"
)

// RecoveryMiddleware converts handler panics into 500 JSON responses so a
// single bad request never takes the server down.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic recovered",
					slog.Any("panic", rec),
					slog.String("trace_id", shared.GetTraceID(r.Context())),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/verdantlabs/flora-api/internal/api/shared"
	"github.com/verdantlabs/flora-api/internal/config"
)

// IdentityMiddleware attaches the caller identity from an optional bearer
// token to the request context for log correlation. The token is purely
// informational: a missing, malformed or expired token never rejects the
// request. The resolution endpoint is open.
func IdentityMiddleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callerID := extractCallerID(r, cfg.JWTSecret)
			if callerID != "" {
				ctx := context.WithValue(r.Context(), shared.CallerIDContextKey, callerID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractCallerID(r *http.Request, secret string) string {
	if secret == "" {
		return ""
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	rawToken, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}

	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		slog.Debug("ignoring unusable bearer token",
			slog.String("trace_id", shared.GetTraceID(r.Context())),
			slog.String("reason", "parse failed"))
		return ""
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return subject
}

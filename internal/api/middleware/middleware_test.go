package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/flora-api/internal/api/shared"
	"github.com/verdantlabs/flora-api/internal/config"
)

func TestTraceMiddlewareSetsTraceID(t *testing.T) {
	t.Parallel()

	var captured string
	handler := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = shared.GetTraceID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, captured, 32, "trace ID is a 32-character hex string")
}

func TestRecoveryMiddlewareConvertsPanic(t *testing.T) {
	t.Parallel()

	handler := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/plants/detail", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "nil map write", "panic details stay out of the response")
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	t.Parallel()

	handler := CORSMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("preflight must not reach the next handler")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/plants/detail", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Locale")
}

func TestCORSMiddlewarePassesNonPreflight(t *testing.T) {
	t.Parallel()

	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/plants/detail", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

const identityTestSecret = "0123456789abcdef0123456789abcdef"

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(identityTestSecret))
	require.NoError(t, err)
	return signed
}

func callerIDCapture(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := r.Context().Value(shared.CallerIDContextKey).(string); ok {
			*captured = id
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestIdentityMiddlewareAttachesSubject(t *testing.T) {
	t.Parallel()

	var captured string
	handler := IdentityMiddleware(config.AuthConfig{JWTSecret: identityTestSecret})(callerIDCapture(&captured))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/plants/detail", nil)
	r.Header.Set("Authorization", "Bearer "+signedToken(t, "gardener-42"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "gardener-42", captured)
}

func TestIdentityMiddlewareNeverGates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		secret string
		header string
	}{
		{name: "NoToken", secret: identityTestSecret},
		{name: "GarbageToken", secret: identityTestSecret, header: "Bearer not-a-jwt"},
		{name: "WrongScheme", secret: identityTestSecret, header: "Basic dXNlcjpwYXNz"},
		{name: "NoSecretConfigured", header: "Bearer whatever"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var captured string
			handler := IdentityMiddleware(config.AuthConfig{JWTSecret: tc.secret})(callerIDCapture(&captured))

			r := httptest.NewRequest(http.MethodPost, "/api/v1/plants/detail", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusNoContent, w.Code, "requests pass through regardless of token state")
			assert.Empty(t, captured)
		})
	}
}

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

const corsPreflightCache = 5 * time.Minute

// CORS allows browser calls from origins. Retry-After is exposed so the
// client can back off after a 429.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAge:         int(corsPreflightCache.Seconds()),
	})
}

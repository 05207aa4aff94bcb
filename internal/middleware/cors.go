package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// DefaultFrontendOrigin is the local development frontend, always allowed.
const DefaultFrontendOrigin = "http://localhost:4200"

// CORS allows browser clients served from the development frontend and
// from frontendURL to call the API with credentials. Preflight responses
// are cached for an hour.
func CORS(frontendURL string) func(http.Handler) http.Handler {
	origins := []string{DefaultFrontendOrigin}
	if frontendURL != "" && frontendURL != DefaultFrontendOrigin {
		origins = append(origins, frontendURL)
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           3600,
	})
}

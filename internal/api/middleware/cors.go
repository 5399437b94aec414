package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS lets the web app on allowedOrigins call the auth API with a bearer
// token. Credentials are not allowed; the token travels in a header.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})
}

// DefaultCORS allows the configured frontend, plus the usual dev server
// ports when the frontend itself runs locally
func DefaultCORS(frontendURL string) func(http.Handler) http.Handler {
	origins := []string{strings.TrimRight(frontendURL, "/")}

	if strings.Contains(frontendURL, "localhost") || strings.Contains(frontendURL, "127.0.0.1") {
		for _, port := range []string{"3000", "5173"} {
			origins = append(origins, "http://localhost:"+port, "http://127.0.0.1:"+port)
		}
	}

	return CORS(origins)
}

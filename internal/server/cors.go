package server

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// corsMiddleware lets players on other origins read the media endpoints.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Range"}),
		handlers.ExposedHeaders([]string{"Accept-Ranges", "Content-Length", "Content-Range"}),
	)
}

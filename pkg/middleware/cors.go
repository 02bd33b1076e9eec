package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS builds the browser access policy for the dashboard. The HTTP surface
// is read-only (stats endpoints and the websocket upgrade), so only GET and
// its preflight are allowed and no credentials are exchanged.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler
}

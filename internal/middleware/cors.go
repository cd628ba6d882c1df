package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Cors lets browser clients on other origins carry the session cookies.
// Any origin is accepted in development, only origins otherwise.
func Cors(development bool, origins ...string) Middleware {
	options := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
	switch {
	case development:
		options.AllowOriginFunc = func(origin string) bool {
			return true
		}
	case len(origins) == 0:
		// an empty list means "*" to cors
		options.AllowOriginFunc = func(origin string) bool {
			return false
		}
	}
	return cors.New(options).Handler
}

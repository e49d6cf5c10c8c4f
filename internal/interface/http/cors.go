package http

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/seoulfit/seoulfit-api/internal/infra/config"
)

// withCORS answers preflights and decorates responses for the configured
// browser origins. An empty list allows any origin without credentials.
func withCORS(handler http.Handler, cfg config.CORSConfig) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", clientIDHeader},
		AllowCredentials: len(cfg.AllowedOrigins) > 0,
		MaxAge:           600,
	}
	if len(cfg.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts).Handler(handler)
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"rentpay-backend/internal/config"
)

const allowedHeaders = "Content-Type, Authorization"

// NewCORS answers browser preflights for every path.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:       cfg.Server.CorsAllowedOrigins,
		AllowedMethods:       cfg.Server.CorsAllowedMethods,
		AllowedHeaders:       cfg.Server.CorsAllowedHeaders,
		OptionsSuccessStatus: http.StatusOK,
		MaxAge:               300, // 5 minutes
	})

	return c.Handler
}

// RouteCORS stamps a route group's allowed methods on every response and
// answers OPTIONS with 200 before authentication runs.
func RouteCORS(methods ...string) mux.MiddlewareFunc {
	allow := strings.Join(append(append([]string{}, methods...), http.MethodOptions), ",")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", allow)
			h.Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package adminapi

import (
	"crypto/rsa"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns a configured chi.Router.
//
//	GET  /healthz      – liveness probe (no authentication)
//	GET  /stats        – ring/decoder counters (JWT required)
//	POST /admin/stop   – graceful shutdown trigger (JWT required)
//
// pubKey verifies RS256 Bearer tokens on the protected routes; pass nil to
// disable JWT validation (used by tests exercising only handler logic).
func NewRouter(srv *Server, pubKey *rsa.PublicKey) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", srv.handleHealthz)

	r.Group(func(r chi.Router) {
		if pubKey != nil {
			r.Use(JWTMiddleware(pubKey))
		}
		r.Get("/stats", srv.handleStats)
		r.Post("/admin/stop", srv.handleStop)
	})

	return r
}

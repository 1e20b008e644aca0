package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/httpserver/handlers"
	"github.com/dmconta/portal/internal/httpserver/mw"
)

func init() { Register(registerState) }

func registerState(r chi.Router, d deps.Deps) {
	guarded := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	guarded.Get("/api/state", handlers.State(d))
	guarded.Get("/api/status", handlers.Status(d))
}

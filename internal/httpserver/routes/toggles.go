package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/httpserver/handlers"
	"github.com/dmconta/portal/internal/httpserver/mw"
)

func init() { Register(registerToggles) }

func registerToggles(r chi.Router, d deps.Deps) {
	guarded := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	guarded.Get("/api/toggles", handlers.GetToggles(d))
	// PUT aliases POST: same handler, same behavior.
	guarded.Post("/api/toggles", handlers.SaveToggles(d))
	guarded.Put("/api/toggles", handlers.SaveToggles(d))
}

package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/httpserver/handlers"
	"github.com/dmconta/portal/internal/httpserver/mw"
)

func init() { Register(registerServices) }

func registerServices(r chi.Router, d deps.Deps) {
	guarded := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	guarded.Post("/api/services", handlers.CreateService(d))
	guarded.Post("/api/services/{id}/toggle", handlers.ToggleService(d))
	guarded.Delete("/api/services/{id}", handlers.DeleteService(d))
}

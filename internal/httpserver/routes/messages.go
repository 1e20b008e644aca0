package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/httpserver/handlers"
	"github.com/dmconta/portal/internal/httpserver/mw"
)

func init() { Register(registerMessages) }

func registerMessages(r chi.Router, d deps.Deps) {
	r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	).Put("/api/messages/{code}", handlers.UpdateMessage(d))
}

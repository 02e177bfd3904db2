package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/mw"
	"github.com/MrSnakeDoc/contesthub/internal/metrics"
)

func init() { Register(registerMetrics) }

func registerMetrics(r chi.Router, d deps.Deps) {
	if d.MetricsPublic {
		r.Method("GET", "/metrics", metrics.Handler())
		return
	}
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Method("GET", "/metrics", metrics.Handler())
}

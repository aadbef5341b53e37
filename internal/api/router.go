// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/castrio/livehub/internal/config"
	"github.com/castrio/livehub/internal/hub"
	"github.com/castrio/livehub/internal/metrics"
	"github.com/castrio/livehub/internal/middleware"
)

// Router assembles the HTTP surface.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter wires the endpoint handlers to their dependencies.
func NewRouter(h *hub.Hub, cfg *config.Config) *Router {
	return &Router{
		handler: NewHandler(h, cfg),
		cfg:     cfg,
	}
}

// Setup builds the route tree. The WebSocket endpoint carries a per-IP
// upgrade rate limit; health endpoints stay unlimited so monitoring never
// trips over it.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Get("/api/v1/stats", router.handler.Stats)
	})

	r.Group(func(r chi.Router) {
		if !router.cfg.Security.RateLimitDisabled {
			r.Use(upgradeRateLimit(router.cfg.Security))
		}
		r.Get("/ws", router.handler.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// upgradeRateLimit bounds WebSocket upgrade attempts per client IP. This is
// separate from the per-connection message rate limiter, which lives in the
// hub and governs frames on established sockets.
func upgradeRateLimit(sec config.SecurityConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		sec.UpgradeRateLimit,
		sec.UpgradeRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.UpgradeRejections.WithLabelValues("rate_limited").Inc()
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		}),
	)
}

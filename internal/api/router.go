// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplens/shoplens/internal/config"
	"github.com/shoplens/shoplens/internal/metrics"
)

// NewRouter assembles the full HTTP surface: the dashboard, the JSON API and
// the Prometheus endpoint.
func NewRouter(h *Handler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(Observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		MaxAge:         300,
	}))

	// Dashboard and operational endpoints stay outside the API rate limit.
	r.Get("/", h.Dashboard)
	r.Get("/api/v1/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.Limit(
				cfg.RateLimit,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, req *http.Request) {
					metrics.APIRateLimitHits.WithLabelValues(routePattern(req)).Inc()
					respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
						"Too many requests", nil)
				}),
			))
		}
		r.Use(chimiddleware.Timeout(cfg.WriteTimeout))

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", h.Overview)
			r.Get("/clusters", h.Clusters)
			r.Get("/churn", h.Churn)
		})

		r.Get("/users", h.Users)
		r.Get("/users/{userID}", h.User)
		r.Get("/products", h.Products)
		r.Get("/recommendations/{userID}", h.Recommendations)
		r.Get("/recommendations/{userID}/history", h.RecommendationHistory)
		r.Post("/train", h.Train)
	})

	return r
}

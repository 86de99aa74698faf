// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package api provides HTTP routing and handlers using the Chi router.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shoplens/shoplens/internal/analytics"
	"github.com/shoplens/shoplens/internal/analytics/session"
	"github.com/shoplens/shoplens/internal/metrics"
	"github.com/shoplens/shoplens/internal/store"
)

// Handler bundles the dependencies of all HTTP endpoints.
type Handler struct {
	session *session.Session
	store   *store.Store
	logger  zerolog.Logger
	version string

	// trainLimiter throttles POST /train; model fits are expensive and a
	// demo dashboard has no business retraining in a tight loop.
	trainLimiter *rate.Limiter
}

// NewHandler builds the endpoint handler set.
func NewHandler(sess *session.Session, st *store.Store, version string, trainInterval time.Duration, logger zerolog.Logger) *Handler {
	if trainInterval <= 0 {
		trainInterval = 10 * time.Second
	}
	return &Handler{
		session:      sess,
		store:        st,
		logger:       logger.With().Str("component", "api").Logger(),
		version:      version,
		trainLimiter: rate.NewLimiter(rate.Every(trainInterval), 1),
	}
}

// respondModelError maps analytics errors onto HTTP statuses.
func respondModelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analytics.ErrNotFitted):
		respondError(w, http.StatusServiceUnavailable, "NOT_FITTED",
			"Models are not trained yet; POST /api/v1/train or wait for startup training", nil)
	case analytics.IsNotFound(err):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case analytics.IsInsufficientData(err):
		respondError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_DATA", err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure", err)
	}
}

func (h *Handler) ok(w http.ResponseWriter, start time.Time, data interface{}) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp:    time.Now(),
			QueryTimeMS:  time.Since(start).Milliseconds(),
			ModelVersion: h.session.Status().ModelVersion,
		},
	})
}

// Health reports service liveness, database connectivity and fit state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	st := h.session.Status()
	respondJSON(w, status, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":        dbStatus,
			"version":       h.version,
			"database":      dbStatus,
			"fitted":        st.Fitted,
			"model_version": st.ModelVersion,
			"users":         st.Users,
			"products":      st.Products,
		},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Overview serves the dashboard headline summary.
func (h *Handler) Overview(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	v, err := h.session.Overview()
	if err != nil {
		respondModelError(w, err)
		return
	}
	h.ok(w, start, v)
}

// Clusters serves the segmentation result.
func (h *Handler) Clusters(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	v, err := h.session.Clusters()
	if err != nil {
		respondModelError(w, err)
		return
	}
	h.ok(w, start, v)
}

// Churn serves the churn estimator result.
func (h *Handler) Churn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	v, err := h.session.ChurnAnalysis(getIntParam(r, "top", 10))
	if err != nil {
		respondModelError(w, err)
		return
	}
	h.ok(w, start, v)
}

// Users lists joined user views.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := getIntParam(r, "limit", 0)
	if limit < 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must not be negative", nil)
		return
	}
	users, err := h.session.Users(limit)
	if err != nil {
		respondModelError(w, err)
		return
	}
	h.ok(w, start, users)
}

// User serves one joined user view.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	v, err := h.session.User(userID)
	if err != nil {
		respondModelError(w, err)
		return
	}
	h.ok(w, start, v)
}

// Products serves the catalog.
func (h *Handler) Products(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	h.ok(w, start, h.session.Products())
}

// Recommendations scores the catalog for one user and persists the served
// list for audit.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	limit := getIntParam(r, "limit", 0)
	if limit < 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must not be negative", nil)
		return
	}

	recs, err := h.session.Recommend(userID, limit)
	if err != nil {
		respondModelError(w, err)
		return
	}

	if err := h.store.SaveRecommendations(r.Context(), recs, h.session.Status().ModelVersion); err != nil {
		// Persistence is audit-only; serving the list still succeeds.
		h.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to persist recommendations")
	}

	h.ok(w, start, recs)
}

// RecommendationHistory serves previously persisted recommendations.
func (h *Handler) RecommendationHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	recs, err := h.store.RecommendationHistory(r.Context(), userID, getIntParam(r, "limit", 20))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load history", err)
		return
	}
	h.ok(w, start, recs)
}

// Train retrains the full pipeline. Throttled; concurrent requests past the
// limiter are rejected rather than queued.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	if !h.trainLimiter.Allow() {
		metrics.APIRateLimitHits.WithLabelValues("/api/v1/train").Inc()
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
			"Training was requested too recently", nil)
		return
	}

	start := time.Now()
	if err := h.session.Fit(r.Context()); err != nil {
		respondModelError(w, err)
		return
	}

	h.logger.Info().Dur("duration", time.Since(start)).Msg("training triggered via API")
	h.ok(w, start, h.session.Status())
}

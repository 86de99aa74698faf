// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/shoplens/shoplens/internal/logging"
	"github.com/shoplens/shoplens/internal/metrics"
)

// requestIDHeader carries the correlation id to clients and logs.
const requestIDHeader = "X-Request-ID"

// RequestID assigns a UUID to each request unless the client supplied one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// Observe records access logs and Prometheus metrics for every request.
func Observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		metrics.RecordAPIRequest(r.Method, routePattern(r), strconv.Itoa(ww.Status()), duration)

		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", w.Header().Get(requestIDHeader)).
			Int("status", ww.Status()).
			Dur("duration", duration).
			Int("bytes", ww.BytesWritten()).
			Msg("request handled")
	})
}

// routePattern returns the chi route template so metrics stay low-cardinality
// even with user ids in the path.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

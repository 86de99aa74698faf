// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Model Training Metrics
	FitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_fit_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"stage"}, // "segmentation", "churn", "pipeline"
	)

	FitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_fit_total",
			Help: "Total number of model training runs",
		},
		[]string{"result"}, // "success", "failure"
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analytics_model_version",
			Help: "Monotonic version of the currently served models",
		},
	)

	ClusterSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "analytics_cluster_size",
			Help: "Number of users assigned to each behavioral cluster",
		},
		[]string{"archetype"},
	)

	ChurnRiskUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "analytics_churn_risk_users",
			Help: "Number of users in each churn risk tier",
		},
		[]string{"tier"},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"result"}, // "success", "not_found", "not_fitted"
	)

	RecommendationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_latency_seconds",
			Help:    "Latency of recommendation scoring in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of failed DuckDB queries",
		},
		[]string{"operation", "table"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordFit records a training run for one pipeline stage
func RecordFit(stage string, duration time.Duration, err error) {
	FitDuration.WithLabelValues(stage).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	FitTotal.WithLabelValues(result).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo publishes the build version gauge, once at startup
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// UpdateUptime refreshes the uptime gauge
func UpdateUptime(start time.Time) {
	AppUptime.Set(time.Since(start).Seconds())
}

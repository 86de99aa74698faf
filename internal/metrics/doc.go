// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Training Metrics:
  - analytics_fit_duration_seconds: Training run duration (histogram)
    Labels: stage (segmentation, churn, pipeline)
  - analytics_fit_total: Training run count (counter)
    Labels: result (success, failure)
  - analytics_model_version: Version of the served models (gauge)
  - analytics_cluster_size: Users per behavioral cluster (gauge)
    Labels: archetype
  - analytics_churn_risk_users: Users per churn risk tier (gauge)
    Labels: tier

Recommendation Metrics:
  - recommendation_requests_total: Recommendation requests (counter)
    Labels: result (success, not_found, not_fitted)
  - recommendation_latency_seconds: Scoring latency (histogram)

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table

All metrics are registered with promauto at package initialization; importing
the package is sufficient to activate collection.
*/
package metrics

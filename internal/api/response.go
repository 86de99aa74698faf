// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/shoplens/shoplens/internal/logging"
)

// APIResponse is the standardized response wrapper used by all endpoints.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response observability fields.
type Metadata struct {
	Timestamp    time.Time `json:"timestamp"`
	QueryTimeMS  int64     `json:"query_time_ms,omitempty"`
	ModelVersion int       `json:"model_version,omitempty"`
}

// APIError is the structured error payload.
//
// Common codes: VALIDATION_ERROR, NOT_FOUND, NOT_FITTED, INSUFFICIENT_DATA,
// RATE_LIMIT_EXCEEDED, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Err(err).Msg("API error")
	}
	respondJSON(w, status, &APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now()},
		Error:    &APIError{Code: code, Message: message},
	})
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

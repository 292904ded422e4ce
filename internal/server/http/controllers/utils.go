package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	cfgpkg "github.com/beaconhq/beacon/internal/config"
	"github.com/beaconhq/beacon/internal/eventlog"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps a notify service error to an HTTP response. Bad
// topic names are the client's fault; anything else gets the fallback 500.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, eventlog.ErrInvalidTopic) {
		writeError(w, http.StatusBadRequest, "invalid topic name")
		return
	}
	writeError(w, http.StatusInternalServerError, fallback)
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// topicParam resolves the topic from the query string, falling back to the
// configured default.
func topicParam(r *http.Request, cfg cfgpkg.Config) string {
	if t := r.URL.Query().Get("topic"); t != "" {
		return t
	}
	return cfg.DefaultTopic
}

// parseUint parses a query parameter as uint64, 0 when absent or invalid.
func parseUint(s string) uint64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseLimit parses a limit string. Returns 0 for empty or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}

// pollTimeout resolves a client-requested timeout_ms against the configured
// default and cap.
func pollTimeout(s string, cfg cfgpkg.Config) time.Duration {
	d := cfg.LongPollDefault()
	if s != "" {
		if ms, err := strconv.Atoi(s); err == nil && ms > 0 {
			d = time.Duration(ms) * time.Millisecond
		}
	}
	if max := cfg.LongPollMax(); max > 0 && d > max {
		d = max
	}
	return d
}

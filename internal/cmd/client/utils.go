package client

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// decodedEvent returns a map with the sequence and one of payload_json or
// payload_text, so tail output stays readable for both shapes.
func decodedEvent(seq uint64, producedAtMs int64, payload string, headers map[string]string) map[string]any {
	out := map[string]any{
		"seq":            seq,
		"produced_at_ms": producedAtMs,
	}
	if len(headers) > 0 {
		out["headers"] = headers
	}
	// Try JSON first if it looks like JSON
	if len(payload) > 0 && (payload[0] == '{' || payload[0] == '[') {
		var v any
		if json.Unmarshal([]byte(payload), &v) == nil {
			out["payload_json"] = v
			return out
		}
	}
	out["payload_text"] = payload
	return out
}

// eventQuery builds the shared query parameters for read endpoints.
func eventQuery(topic string, lastID uint64, limit int, filter string) url.Values {
	q := url.Values{}
	if topic != "" {
		q.Set("topic", topic)
	}
	if lastID > 0 {
		q.Set("last_id", strconv.FormatUint(lastID, 10))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if filter != "" {
		q.Set("filter", filter)
	}
	return q
}

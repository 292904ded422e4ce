package controllers

import (
	notifysvc "github.com/beaconhq/beacon/internal/services/notify"
)

// eventJSON is the wire shape shared by every transport.
type eventJSON struct {
	Seq          uint64            `json:"seq"`
	Payload      string            `json:"payload"`
	Headers      map[string]string `json:"headers,omitempty"`
	ProducedAtMs int64             `json:"produced_at_ms"`
}

func toEventJSON(it notifysvc.SubscribeItem) eventJSON {
	return eventJSON{
		Seq:          it.Seq,
		Payload:      string(it.Payload),
		Headers:      it.Headers,
		ProducedAtMs: it.ProducedAtMs,
	}
}

func toEventJSONs(items []notifysvc.SubscribeItem) []eventJSON {
	out := make([]eventJSON, len(items))
	for i, it := range items {
		out[i] = toEventJSON(it)
	}
	return out
}

type publishReq struct {
	Topic   string            `json:"topic"`
	Payload string            `json:"payload"`
	Headers map[string]string `json:"headers,omitempty"`
}

type publishResp struct {
	Seq          uint64 `json:"seq"`
	ProducedAtMs int64  `json:"produced_at_ms"`
}

type ackReq struct {
	Topic string `json:"topic"`
	Group string `json:"group"`
	Seq   uint64 `json:"seq"`
}

// pollResp is the long-poll envelope. Status is "new_data" when events
// arrived within the window and "timeout" otherwise.
type pollResp struct {
	Status string      `json:"status"`
	Cursor uint64      `json:"cursor"`
	Events []eventJSON `json:"events,omitempty"`
}

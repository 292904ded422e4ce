package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadSSEParsesDataFrames(t *testing.T) {
	body := "retry: 3000\n\n" +
		"id: 1\nevent: message\ndata: {\"seq\":1}\n\n" +
		"id: 2\nevent: message\ndata: {\"seq\":2}\n\n"
	var got []string
	err := readSSE(strings.NewReader(body), func(data []byte) error {
		got = append(got, string(data))
		return nil
	})
	if err != nil {
		t.Fatalf("readSSE: %v", err)
	}
	if len(got) != 2 || got[0] != `{"seq":1}` || got[1] != `{"seq":2}` {
		t.Fatalf("frames: %v", got)
	}
}

func TestDecodedEventPrefersJSON(t *testing.T) {
	out := decodedEvent(3, 1000, `{"kind":"demo"}`, nil)
	if _, ok := out["payload_json"]; !ok {
		t.Fatalf("json payload not decoded: %v", out)
	}
	out = decodedEvent(4, 1000, "plain text", map[string]string{"a": "b"})
	if out["payload_text"] != "plain text" {
		t.Fatalf("text payload: %v", out)
	}
	if out["headers"].(map[string]string)["a"] != "b" {
		t.Fatalf("headers: %v", out)
	}
}

func TestEventQuery(t *testing.T) {
	q := eventQuery("events", 42, 10, "size > 0")
	if q.Get("topic") != "events" || q.Get("last_id") != "42" || q.Get("limit") != "10" || q.Get("filter") != "size > 0" {
		t.Fatalf("query: %v", q)
	}
	if q := eventQuery("", 0, 0, ""); len(q) != 0 {
		t.Fatalf("empty query has params: %v", q)
	}
}

func TestPublishCommandPrintsResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/publish" {
			t.Errorf("path %s", r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["payload"] != "hi" {
			t.Errorf("payload %v", req["payload"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"seq": 1, "produced_at_ms": 1000})
	}))
	defer ts.Close()

	cmd := newEventPublishCommand(func() string { return ts.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--topic", "events", "--payload", "hi"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), `"seq":1`) {
		t.Fatalf("output: %s", buf.String())
	}
}

func TestTailCommandPrintsEvents(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("id: 1\nevent: message\ndata: {\"seq\":1,\"payload\":\"hello\",\"produced_at_ms\":1000}\n\n"))
	}))
	defer ts.Close()

	cmd := newEventTailCommand(func() string { return ts.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--topic", "events", "--limit", "1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("output: %s", buf.String())
	}
}

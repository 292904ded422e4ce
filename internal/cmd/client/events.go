// Package client contains Cobra CLI commands for Beacon.
package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// NewEventCommand constructs the `event` command group and subcommands.
func NewEventCommand(baseURL BaseURLFunc) *cobra.Command {
	eventCmd := &cobra.Command{Use: "event", Short: "Event operations"}

	eventCmd.AddCommand(
		newEventPublishCommand(baseURL),
		newEventMessagesCommand(baseURL),
		newEventPollCommand(baseURL),
		newEventTailCommand(baseURL),
		newEventChatCommand(baseURL),
		newEventAckCommand(baseURL),
		newEventStatsCommand(baseURL),
	)

	return eventCmd
}

// newEventPublishCommand constructs the `event publish` subcommand.
func newEventPublishCommand(baseURL BaseURLFunc) *cobra.Command {
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish one event",
		RunE: func(cmd *cobra.Command, args []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			payload, _ := cmd.Flags().GetString("payload")
			if payload == "" && len(args) > 0 {
				payload = strings.Join(args, " ")
			}
			headerKVs, _ := cmd.Flags().GetStringToString("header")

			body, _ := json.Marshal(map[string]any{
				"topic":   topic,
				"payload": payload,
				"headers": headerKVs,
			})
			resp, err := http.Post(baseURL()+"/v1/publish", "application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			out, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("publish failed: %s: %s", resp.Status, strings.TrimSpace(string(out)))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(out)))
			return nil
		},
	}
	publishCmd.Flags().StringP("topic", "t", "", "Topic (server default when empty)")
	publishCmd.Flags().String("payload", "", "Event payload")
	publishCmd.Flags().StringToString("header", nil, "Event headers as key=value")
	return publishCmd
}

// newEventMessagesCommand constructs the `event messages` subcommand.
func newEventMessagesCommand(baseURL BaseURLFunc) *cobra.Command {
	messagesCmd := &cobra.Command{
		Use:   "messages",
		Short: "List recent events without blocking",
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			lastID, _ := cmd.Flags().GetUint64("last-id")
			limit, _ := cmd.Flags().GetInt("limit")

			q := eventQuery(topic, lastID, limit, "")
			resp, err := http.Get(baseURL() + "/v1/messages?" + q.Encode())
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("messages failed: %s", resp.Status)
			}
			return printJSONIndented(cmd.OutOrStdout(), resp.Body)
		},
	}
	messagesCmd.Flags().StringP("topic", "t", "", "Topic (server default when empty)")
	messagesCmd.Flags().Uint64("last-id", 0, "Return events newer than this sequence")
	messagesCmd.Flags().Int("limit", 0, "Max events to return")
	return messagesCmd
}

// newEventPollCommand constructs the `event poll` subcommand.
func newEventPollCommand(baseURL BaseURLFunc) *cobra.Command {
	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Long-poll for events newer than a cursor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			lastID, _ := cmd.Flags().GetUint64("last-id")
			timeoutMs, _ := cmd.Flags().GetInt("timeout-ms")
			filter, _ := cmd.Flags().GetString("filter")

			q := eventQuery(topic, lastID, 0, filter)
			if timeoutMs > 0 {
				q.Set("timeout_ms", strconv.Itoa(timeoutMs))
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, baseURL()+"/v1/poll?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("poll failed: %s", resp.Status)
			}
			return printJSONIndented(cmd.OutOrStdout(), resp.Body)
		},
	}
	pollCmd.Flags().StringP("topic", "t", "", "Topic (server default when empty)")
	pollCmd.Flags().Uint64("last-id", 0, "Cursor; return events newer than this sequence")
	pollCmd.Flags().Int("timeout-ms", 0, "Wait window in ms (server default when 0)")
	pollCmd.Flags().String("filter", "", "CEL filter (server-side)")
	return pollCmd
}

// newEventTailCommand constructs the `event tail` subcommand, which follows
// the SSE stream and prints one JSON line per event.
func newEventTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow a topic over SSE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			lastID, _ := cmd.Flags().GetUint64("last-id")
			limit, _ := cmd.Flags().GetInt("limit")
			filter, _ := cmd.Flags().GetString("filter")
			replay, _ := cmd.Flags().GetInt("replay")

			q := eventQuery(topic, lastID, limit, filter)
			if replay >= 0 {
				q.Set("replay", strconv.Itoa(replay))
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, baseURL()+"/v1/events?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "text/event-stream")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("tail failed: %s", resp.Status)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			return readSSE(resp.Body, func(data []byte) error {
				var ev struct {
					Seq          uint64            `json:"seq"`
					Payload      string            `json:"payload"`
					Headers      map[string]string `json:"headers"`
					ProducedAtMs int64             `json:"produced_at_ms"`
				}
				if err := json.Unmarshal(data, &ev); err != nil {
					return nil
				}
				return enc.Encode(decodedEvent(ev.Seq, ev.ProducedAtMs, ev.Payload, ev.Headers))
			})
		},
	}
	tailCmd.Flags().StringP("topic", "t", "", "Topic (server default when empty)")
	tailCmd.Flags().Uint64("last-id", 0, "Resume after this sequence")
	tailCmd.Flags().Int("limit", 0, "Stop after N events (0 = infinite)")
	tailCmd.Flags().String("filter", "", "CEL filter (server-side)")
	tailCmd.Flags().Int("replay", -1, "Replay the newest N events first (-1 = server default)")
	return tailCmd
}

// readSSE scans an SSE body and invokes fn with each data payload.
func readSSE(r io.Reader, fn func(data []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var data bytes.Buffer
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if data.Len() > 0 {
				if err := fn(data.Bytes()); err != nil {
					return err
				}
				data.Reset()
			}
			continue
		}
		if v, ok := strings.CutPrefix(line, "data: "); ok {
			data.WriteString(v)
		}
	}
	return sc.Err()
}

// newEventChatCommand constructs the `event chat` subcommand: a WebSocket
// session that prints incoming events and publishes stdin lines.
func newEventChatCommand(baseURL BaseURLFunc) *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Join a topic over WebSocket; stdin lines are published",
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			name, _ := cmd.Flags().GetString("name")

			wsURL := strings.Replace(baseURL(), "http", "ws", 1) + "/v1/ws"
			q := eventQuery(topic, 0, 0, "")
			q.Set("name", name)
			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL+"?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			defer conn.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			readErr := make(chan error, 1)
			go func() {
				for {
					var msg struct {
						Type  string `json:"type"`
						Event struct {
							Seq          uint64            `json:"seq"`
							Payload      string            `json:"payload"`
							Headers      map[string]string `json:"headers"`
							ProducedAtMs int64             `json:"produced_at_ms"`
						} `json:"event"`
					}
					if err := conn.ReadJSON(&msg); err != nil {
						readErr <- err
						return
					}
					ev := msg.Event
					_ = enc.Encode(decodedEvent(ev.Seq, ev.ProducedAtMs, ev.Payload, ev.Headers))
				}
			}()

			go func() {
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					if line := sc.Text(); line != "" {
						if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
							return
						}
					}
				}
			}()

			select {
			case <-cmd.Context().Done():
				return nil
			case err := <-readErr:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}
		},
	}
	chatCmd.Flags().StringP("topic", "t", "", "Topic (server default when empty)")
	chatCmd.Flags().String("name", "anonymous", "Display name for join/leave events")
	return chatCmd
}

// newEventAckCommand constructs the `event ack` subcommand.
func newEventAckCommand(baseURL BaseURLFunc) *cobra.Command {
	ackCmd := &cobra.Command{
		Use:   "ack",
		Short: "Commit a consumer group cursor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			group, _ := cmd.Flags().GetString("group")
			seq, _ := cmd.Flags().GetUint64("seq")

			body, _ := json.Marshal(map[string]any{"topic": topic, "group": group, "seq": seq})
			resp, err := http.Post(baseURL()+"/v1/ack", "application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusNoContent {
				return fmt.Errorf("ack failed: %s", resp.Status)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", "OK")
			return nil
		},
	}
	ackCmd.Flags().StringP("topic", "t", "", "Topic (server default when empty)")
	ackCmd.Flags().String("group", "", "Consumer group")
	ackCmd.Flags().Uint64("seq", 0, "Last handled sequence")
	return ackCmd
}

// newEventStatsCommand constructs the `event stats` subcommand.
func newEventStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-topic stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := http.Get(baseURL() + "/v1/stats")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("stats failed: %s", resp.Status)
			}
			return printJSONIndented(cmd.OutOrStdout(), resp.Body)
		},
	}
	return statsCmd
}

// printJSONIndented re-encodes a JSON body with indentation for terminals.
func printJSONIndented(w io.Writer, r io.Reader) error {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

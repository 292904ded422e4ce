// Package client provides the `beacon` command-line client.
//
// The CLI talks to the Beacon HTTP API to publish events and consume them
// over every supported transport from a terminal. It is primarily intended
// for developers and operators.
//
// Installation
//
//	go install github.com/beaconhq/beacon/cmd/beacon@latest
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it reads
// BEACON_HTTP and defaults to http://127.0.0.1:8080.
//
// Usage
//
//	beacon event publish --topic events --payload '{"hello":"world"}' \
//	    --header source=cli
//
//	# Stateless polling
//	beacon event messages --topic events --limit 10
//	beacon event messages --topic events --last-id 42
//
//	# Bounded long-poll; a timeout is a normal response
//	beacon event poll --topic events --last-id 42 --timeout-ms 30000
//
//	# Follow the SSE stream
//	beacon event tail --topic events --filter 'json.kind == "alert"'
//
//	# Interactive WebSocket session; stdin lines are published
//	beacon event chat --topic events --name alice
//
//	# Consumer group cursors
//	beacon event ack --topic events --group workers --seq 42
//
//	beacon event stats
//
// Notes
//
//   - tail resumes from --last-id and replays the newest --replay events
//     on fresh connections, mirroring the browser Last-Event-ID behavior.
//   - filters are CEL expressions evaluated server-side per consumer.
package client

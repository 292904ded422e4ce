// Package fanout tracks live push subscribers and distributes appended
// events to them. Subscribers are identified by uuid and receive events
// on a buffered channel; delivery never blocks the broadcaster, so a
// consumer that falls behind is dropped rather than slowing its peers.
package fanout

// Package notifysvc implements the event-delivery facade behind every
// transport. Publishes append to a durable per-topic log and fan out to
// live push subscribers; polls read the log directly; long-polls block on
// the log's wait gate. All transports therefore observe the same sequence
// numbers, so a client may switch transports without losing its place.
//
// Delivery styles:
//
//	ReadLast/ReadSince  stateless polling
//	WaitForNew          bounded long-poll, timeout is a normal outcome
//	Subscribe           replay-then-live streaming through a SubscribeSink
//
// Optional CEL filters apply per consumer and never affect what is stored.
package notifysvc

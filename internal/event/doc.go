// Package event provides the synchronous publish/subscribe bus that
// connects the editor core to its extension features.
//
// Events are named by hierarchical topics (see the topic subpackage)
// and delivered in priority order on the publisher's goroutine. The
// editing model is single threaded, so handlers run to completion
// before Publish returns; a handler may itself publish, which nests
// delivery. Subscriptions double as disposal handles: cancelling one
// stops delivery immediately and is idempotent.
//
// Typed payloads travel in an Envelope. Payload types that implement
// TopicProvider can be published directly; otherwise wrap a typed
// Event with Wrap.
package event

// Package events defines the event payload types and topic constants
// shared between the editor core and extension features. Payloads are
// plain data and import nothing beyond the topic package, so any
// component can depend on them without coupling to the publisher.
package events

// Package events defines the domain event payloads the settlement engine
// publishes after a transaction commits. Publishing is fire-and-forget;
// downstream notification and analytics consumers subscribe by event name.
package events

// Package queue defines message payloads exchanged over the message broker.
package queue

// EmailNotificationEvent is published whenever the reservation
// ledger needs to reach an attendee: reservation confirmations and
// waiting-list promotions. It carries the fully rendered mail so the
// consumer can deliver it without querying the primary database.
type EmailNotificationEvent struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	QueuedAt string `json:"queued_at"`
}

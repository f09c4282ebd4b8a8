// Package queue defines message payloads exchanged over the message broker.
package queue

// ReviewSubmittedEvent is published when a customer submits a new
// review. Downstream consumers (moderation alerting, analytics) get
// enough context to act without querying the primary database.
type ReviewSubmittedEvent struct {
	ReviewID    uint64 `json:"review_id"`
	VehicleID   uint64 `json:"vehicle_id"`
	VehicleName string `json:"vehicle_name"`
	AccountID   uint64 `json:"account_id"`
	Rating      int    `json:"rating"`
	SubmittedAt string `json:"submitted_at"`
}

// ReviewModeratedEvent is published when staff toggle a review's
// approval flag. Approved reports the state after the toggle.
type ReviewModeratedEvent struct {
	ReviewID    uint64 `json:"review_id"`
	VehicleID   uint64 `json:"vehicle_id"`
	ModeratorID uint64 `json:"moderator_id"`
	Approved    bool   `json:"approved"`
	ModeratedAt string `json:"moderated_at"`
}

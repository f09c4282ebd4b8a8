package model

import "time"

// Review is a customer's opinion of a vehicle. A review moves between
// exactly two states: pending (Approved=false) and approved
// (Approved=true), toggled by staff moderation. Only approved reviews
// appear in public listings or count toward rating aggregates; the
// owner and staff see a review regardless of state.
//
// An account may hold at most one review per vehicle. That invariant
// lives in the database as a UNIQUE(vehicle_id, account_id) key, so a
// concurrent double submit loses cleanly instead of racing a
// check-then-insert.
//
// Fields:
//  ID        – primary key identifier.
//  VehicleID – reviewed vehicle.
//  AccountID – authoring account.
//  Title     – short headline, 1–100 characters.
//  Body      – review text, 10–1000 characters.
//  Rating    – star rating, integer 1–5.
//  Approved  – moderation flag; false until staff approve.
//  CreatedAt – submission timestamp.
type Review struct {
	ID        uint64    // reviews.id
	VehicleID uint64    // reviews.vehicle_id
	AccountID uint64    // reviews.account_id
	Title     string    // reviews.title
	Body      string    // reviews.body
	Rating    int       // reviews.rating
	Approved  bool      // reviews.approved
	CreatedAt time.Time // reviews.created_at
}

// ReviewWithContext is a review joined with the names a listing needs:
// the reviewer for vehicle pages, the vehicle for account and admin
// pages. Unused join fields are left zero depending on the query.
type ReviewWithContext struct {
	Review
	ReviewerFirstName string
	ReviewerLastName  string
	VehicleMake       string
	VehicleModel      string
	VehicleYear       int
}

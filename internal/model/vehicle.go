package model

import "time"

// Vehicle is a single inventory item offered for sale. All ten
// descriptive fields are required when staff add or edit a vehicle.
//
// Fields:
//  ID               – primary key identifier.
//  Make             – manufacturer name.
//  Model            – model name.
//  Year             – model year.
//  Description      – free-form sales description.
//  Image            – path of the full-size image.
//  Thumbnail        – path of the listing thumbnail.
//  Price            – asking price in whole cents to avoid float drift.
//  Miles            – odometer reading.
//  Color            – exterior color.
//  ClassificationID – category the vehicle is browsed under.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Vehicle struct {
	ID               uint64    // vehicles.id
	Make             string    // vehicles.make
	Model            string    // vehicles.model
	Year             int       // vehicles.year
	Description      string    // vehicles.description
	Image            string    // vehicles.image
	Thumbnail        string    // vehicles.thumbnail
	PriceCents       uint64    // vehicles.price_cents
	Miles            uint32    // vehicles.miles
	Color            string    // vehicles.color
	ClassificationID uint64    // vehicles.classification_id
	CreatedAt        time.Time // vehicles.created_at
	UpdatedAt        time.Time // vehicles.updated_at
}

// VehicleWithStats is a vehicle row joined with its approved-review
// aggregates. The aggregates are recomputed on every read so a
// moderation change is visible on the very next request; nothing is
// cached in between.
type VehicleWithStats struct {
	Vehicle
	AvgRating   float64 // AVG(rating) over approved reviews, 0 when none
	ReviewCount int     // COUNT of approved reviews
}

// Name returns the customary "Make Model" display name used in page
// titles and flash messages.
func (v Vehicle) Name() string { return v.Make + " " + v.Model }

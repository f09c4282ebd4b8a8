package model

import "time"

// Classification groups vehicles into a browsable category such as
// "SUV" or "Classic". Classifications are created by staff and
// referenced by vehicles through a foreign key; there is no delete
// path, so a classification with vehicles can never dangle.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique category name.
//  CreatedAt – timestamp when the classification was created.
type Classification struct {
	ID        uint64    // classifications.id
	Name      string    // classifications.name
	CreatedAt time.Time // classifications.created_at
}

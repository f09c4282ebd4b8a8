// Package repository defines error values that are reused across multiple
// repositories. These sentinels let handlers distinguish failure
// scenarios without inspecting driver errors: a missing row, a unique
// key collision, a foreign key pointing nowhere. Anything else is a
// plain persistence error that handlers log and report generically.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup matches no row. Handlers
// translate this into a redirect to a safe listing page.
var ErrNotFound = errors.New("not found")

// ErrBadReference is returned when an insert or update violates a
// foreign key, such as assigning a vehicle to a classification that
// does not exist. The prior row is left unchanged by the store.
var ErrBadReference = errors.New("referenced row does not exist")

// isDuplicateKey reports whether err is a MySQL unique constraint
// violation (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isBadReference reports whether err is a MySQL foreign key failure
// (error 1452 on insert/update).
func isBadReference(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}

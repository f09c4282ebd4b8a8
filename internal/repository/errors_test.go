package repository

import (
	"errors"
	"fmt"
	"testing"
)

func TestDuplicateKeyDetection(t *testing.T) {
	dup := fmt.Errorf("Error 1062 (23000): Duplicate entry 'a@b.com' for key 'accounts.email'")
	if !isDuplicateKey(dup) {
		t.Fatalf("1062 not detected as duplicate key")
	}
	if isDuplicateKey(nil) {
		t.Fatalf("nil detected as duplicate key")
	}
	if isDuplicateKey(errors.New("connection refused")) {
		t.Fatalf("unrelated error detected as duplicate key")
	}
}

func TestBadReferenceDetection(t *testing.T) {
	fk := fmt.Errorf("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails")
	if !isBadReference(fk) {
		t.Fatalf("1452 not detected as foreign key failure")
	}
	if isBadReference(nil) || isBadReference(errors.New("deadlock found")) {
		t.Fatalf("false positive in foreign key detection")
	}
}

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

func TestRequireRow(t *testing.T) {
	if err := requireRow(fakeResult{rows: 1}); err != nil {
		t.Fatalf("affected row reported as missing: %v", err)
	}
	if err := requireRow(fakeResult{rows: 0}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("zero rows should map to ErrNotFound, got %v", err)
	}
}

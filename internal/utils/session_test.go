package utils

import (
	"testing"

	"github.com/lvaldez/driveline/internal/model"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	a := model.Account{
		ID:        42,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Role:      model.RoleEmployee,
	}
	tok, err := NewSessionToken("secret", a, 60)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	claims, err := ParseSessionToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.AccountID != a.ID || claims.Email != a.Email || claims.Role != a.Role {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.FullName() != "Ada Lovelace" {
		t.Fatalf("full name: %q", claims.FullName())
	}
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewSessionToken("secret", model.Account{ID: 1, Role: model.RoleClient}, 60)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if _, err := ParseSessionToken("other-secret", tok.Token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	tok, err := NewSessionToken("secret", model.Account{ID: 1, Role: model.RoleClient}, -1)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if _, err := ParseSessionToken("secret", tok.Token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestSessionTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseSessionToken("secret", "not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatalf("hash equals plaintext")
	}
	if !VerifyPassword(hash, "hunter2hunter2") {
		t.Fatalf("correct password rejected")
	}
	if VerifyPassword(hash, "wrong-password") {
		t.Fatalf("wrong password accepted")
	}
}

package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/lvaldez/driveline/internal/model"
)

// SessionToken is the signed credential stored in the session cookie.
// Token holds the serialized JWT; Exp is its UTC expiration, used to
// set the cookie's lifetime to match.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims is what the token proves: the account's non-secret
// fields. The password hash is deliberately absent from this type so
// it cannot end up in a cookie by accident.
type SessionClaims struct {
	AccountID uint64
	FirstName string
	LastName  string
	Email     string
	Role      model.Role
}

// FullName is the display name used in greetings and admin listings.
func (s SessionClaims) FullName() string { return s.FirstName + " " + s.LastName }

var errInvalidSession = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT for an authenticated
// account. The claims carry subject (sub), name parts, email and role
// alongside the standard exp/iat pair. ttlMin controls the lifetime;
// production configuration sets it to one hour.
func NewSessionToken(secret string, a model.Account, ttlMin int) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":        a.ID,
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"email":      a.Email,
		"role":       string(a.Role),
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies signature and expiry and returns the
// embedded claims. Any defect (wrong algorithm, bad signature, expired,
// malformed role) yields an error; callers treat that as anonymous.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, errInvalidSession
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, errInvalidSession
	}
	sub, ok := claims["sub"].(float64) // JSON numbers decode as float64
	if !ok || sub <= 0 {
		return SessionClaims{}, errInvalidSession
	}
	roleStr, _ := claims["role"].(string)
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return SessionClaims{}, errInvalidSession
	}
	first, _ := claims["first_name"].(string)
	last, _ := claims["last_name"].(string)
	email, _ := claims["email"].(string)
	return SessionClaims{
		AccountID: uint64(sub),
		FirstName: first,
		LastName:  last,
		Email:     email,
		Role:      role,
	}, nil
}

package model

import "time"

// Account represents a registered user of the site as stored in the
// `accounts` table. The PasswordHash field never leaves the service
// boundary: handlers strip it before the account is embedded in a
// session token or handed to a template.
//
// Fields:
//  ID           – primary key identifier of the account.
//  FirstName    – given name shown in greetings and listings.
//  LastName     – family name.
//  Email        – unique email address, stored lower-cased.
//  PasswordHash – bcrypt hashed password.
//  Role         – access level of the account (Client, Employee, Admin).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Account struct {
	ID           uint64    // accounts.id
	FirstName    string    // accounts.first_name
	LastName     string    // accounts.last_name
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	Role         Role      // accounts.role
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}

// Package models defines the core data structures shared by the repositories,
// services and transport: users, lookup rows, notes, list items and co-author
// grants.
package models

import (
	"net/mail"
	"strings"
	"time"
)

// Lookup names seeded into the statuses and types tables.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	TypeList  = "list"
	TypePlain = "plain"
)

// User represents an application user.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// FirstName is the given name shown to collaborators.
	FirstName string `json:"firstName"`
	// SecondName is the family name shown to collaborators.
	SecondName string `json:"secondName"`
	// Email is unique across users and is how notes are shared.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash []byte `json:"-"`
	// Created is the registration time.
	Created time.Time `json:"created"`
	// Updated is the last profile change.
	Updated time.Time `json:"updated"`
}

// Validate checks the profile fields required to persist a user.
func (u *User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" {
		return NewValidationError("first name is required")
	}
	if strings.TrimSpace(u.SecondName) == "" {
		return NewValidationError("second name is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return NewValidationError("email format is wrong")
	}
	return nil
}

// Status is a row of the statuses lookup table.
type Status struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Type is a row of the types lookup table.
type Type struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Package models defines data models for the contact service.
package models

import "time"

// User represents an account holder. A user always has at least one
// authentication method: a bcrypt password hash, a linked Google account,
// or both.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  []byte    `json:"-"`
	GoogleID  *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewUser struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password []byte  `json:"-"`
	GoogleID *string `json:"-"`
}

// Contact belongs to exactly one user. Ownership is enforced in the data
// layer; handlers never see another user's rows.
type Contact struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Age            *int      `json:"age,omitempty"`
	SecondaryPhone string    `json:"secondary_phone"`
	PhotoObject    *string   `json:"-"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type NewContact struct {
	UserID         string
	Name           string
	Email          string
	Phone          string
	Age            *int
	SecondaryPhone string
}

// ContactPatch carries a partial update; nil fields are left untouched.
type ContactPatch struct {
	Name           *string
	Email          *string
	Phone          *string
	Age            *int
	SecondaryPhone *string
}

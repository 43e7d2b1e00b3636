// Package models holds the server-side domain types.
package models

import "time"

// User is a registered identity. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserPatch lists the fields an update may touch. Nil means unchanged.
type UserPatch struct {
	Email  *string `json:"email,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Active == nil
}

// Apply returns a copy of u with the patch applied.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	return u
}

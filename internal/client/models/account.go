// Package models defines client-side data models used by the gophauth CLI.
package models

import "time"

// Account is the server's view of the signed-in user.
type Account struct {
	ID        string
	UserName  string
	Email     string
	Active    bool
	CreatedAt time.Time
}

// Session is an issued access token as returned by Login or Register.
type Session struct {
	AccessToken string
	TokenType   string
	// ExpiresIn is zero when the server did not report a lifetime.
	ExpiresIn time.Duration
}

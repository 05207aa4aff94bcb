// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. There is no inheritance:
// a Todo refers to its owner by ID, not by embedding a User.
package model

import "time"

// User represents a registered account.
//
// PasswordHash carries the `json:"-"` tag so it can never leak into a
// response, even if a handler accidentally encodes a whole User.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

package model

import "time"

// Todo is a single to-do item owned by exactly one user.
//
// Description is a pointer because the column is nullable: a todo created
// without a description is encoded as "description": null, not "".
//
// UserID is the owner. It is set by the service from the authenticated
// principal and never accepted from (or returned to) the client.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      string    `json:"-"`
}

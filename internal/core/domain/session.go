package domain

import "time"

// Session binds an unguessable identifier to exactly one user.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

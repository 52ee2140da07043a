package domain

import "time"

// Rating represents a single user's rating for a book. Values are whole
// stars in [1,5]; at most one rating exists per (book, user) pair.
type Rating struct {
	BookID    string
	UserID    string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

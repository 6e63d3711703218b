package models

import "time"

// Post is a news/board entry written by an admin, based on the 'posts' table
type Post struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	Pinned    bool      `json:"pinned" db:"pinned"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Author *User `json:"author,omitempty"`
}

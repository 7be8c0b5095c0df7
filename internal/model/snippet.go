package model

import "time"

// Snippet is a titled block of text content owned by one user and associated
// with one or more tags.
//
// UserID is set once at creation from the authenticated caller and never
// changes afterwards. CreatedBy carries the owner's username, populated by
// the repository when it loads a snippet. Tags is the resolved tag set in
// the order the titles were submitted.
//
// The wire representation (including the per-endpoint detail URL projection)
// lives in the handler layer; this struct is the storage-facing shape.
type Snippet struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"-"`
	CreatedBy string    `json:"created_by"`
	Tags      []Tag     `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

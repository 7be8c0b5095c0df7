package model

import "time"

// Tag is a shared, reusable text label attachable to many snippets.
//
// Titles are unique at the storage layer (exact, case-sensitive match) and
// act as the lookup key for get-or-create resolution. Tags are created
// implicitly the first time a snippet references an unseen title and are
// never deleted by this service.
type Tag struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

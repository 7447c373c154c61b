package models

import "time"

// Topic is a named section of an imported manual as it is kept in the store.
type Topic struct {
	ID          string    `json:"id"`
	Name        string    `json:"topic"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Done        bool      `json:"done"`
}

package models

import "time"

// Document represents a row of the documents relation.
type Document struct {
	ID        int64     `db:"id"`
	Committed bool      `db:"committed"`
	CreatedAt time.Time `db:"created_at"`
}

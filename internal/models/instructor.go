package models

import "time"

// Instructor represents a training instructor record. Classes keep a weak
// reference to it; instructor lifecycle is independent of any session.
type Instructor struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Registration string    `db:"registration" json:"registration"`
	Unit         string    `db:"unit" json:"unit"`
	Position     *string   `db:"position" json:"position,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorFilter captures filtering options for listing instructors.
type InstructorFilter struct {
	Search   string
	Unit     string
	Active   *bool
	Page     int
	PageSize int
}

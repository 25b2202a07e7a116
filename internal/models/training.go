package models

import "time"

// Training is a portfolio training definition. Portfolio classes copy its
// descriptive fields at creation time as a denormalized snapshot, so later
// catalog edits never alter historical sessions.
type Training struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Code           string    `db:"code" json:"code"`
	Duration       *string   `db:"duration" json:"duration,omitempty"`
	Provider       *string   `db:"provider" json:"provider,omitempty"`
	Content        *string   `db:"content" json:"content,omitempty"`
	Classification *string   `db:"classification" json:"classification,omitempty"`
	Objective      *string   `db:"objective" json:"objective,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TrainingFilter captures filtering options for listing the catalog.
type TrainingFilter struct {
	Search   string
	Page     int
	PageSize int
}

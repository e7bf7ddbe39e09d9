package models

import "time"

// Course is an entry of the course catalogue. Code is the natural key.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Credits     float64   `db:"credits" json:"credits"`
	Department  string    `db:"department" json:"department"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Search     string
	Department string
}

// CourseRequest is the manual create/update payload.
type CourseRequest struct {
	Code        string  `json:"code" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Credits     float64 `json:"credits" validate:"gt=0"`
	Department  string  `json:"department" validate:"required"`
}

package models

import "time"

// UserRole distinguishes the two kinds of people tracked by the directory.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleFaculty
}

// IDPrefix is the prefix used for generated identifiers of the role.
func (r UserRole) IDPrefix() string {
	if r == RoleFaculty {
		return "NEWF"
	}
	return "NEWS"
}

// UserRecord is a student or faculty member. Field, batch and section apply to
// students; department applies to faculty.
type UserRecord struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Role       UserRole  `db:"role" json:"role"`
	Field      string    `db:"field" json:"field,omitempty"`
	Batch      string    `db:"batch" json:"batch,omitempty"`
	Section    string    `db:"section" json:"section,omitempty"`
	Department string    `db:"department" json:"department,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role   UserRole
	Search string
}

// UserRequest is the manual create/update payload.
type UserRequest struct {
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	Role       UserRole `json:"role" validate:"omitempty,oneof=student faculty"`
	Field      string   `json:"field"`
	Batch      string   `json:"batch"`
	Section    string   `json:"section"`
	Department string   `json:"department"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

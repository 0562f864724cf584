package models

import "time"

// Class represents a taught class. TeacherID is a weak reference: a class may
// exist with no teacher assigned, and survives its teacher's deletion.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with joined display data.
type ClassDetail struct {
	Class
	TeacherName  *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	FirstLecture *time.Time `db:"first_lecture" json:"first_lecture,omitempty"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	TeacherID string
	Search    string
	Page      int
	PageSize  int
}

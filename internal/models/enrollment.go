package models

// Enrollment links a student to a class. The (student_id, class_id) pair is
// unique; the service checks before insert.
type Enrollment struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`
	ClassID   string `db:"class_id" json:"class_id"`
}

// EnrollmentDetail enriches Enrollment with joined display data.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
}

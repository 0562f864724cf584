package models

import "time"

// SickLeaveStatus tracks the adjudication state of an absence appeal.
type SickLeaveStatus string

const (
	SickLeavePending  SickLeaveStatus = "PENDING"
	SickLeaveAccepted SickLeaveStatus = "ACCEPTED"
	SickLeaveRejected SickLeaveStatus = "REJECTED"
)

// Valid reports whether the status is a supported value.
func (s SickLeaveStatus) Valid() bool {
	switch s {
	case SickLeavePending, SickLeaveAccepted, SickLeaveRejected:
		return true
	default:
		return false
	}
}

// Attendance is a recorded absence for a (student, lecture) pair.
//
// Storage is deliberately sparse: a row exists only when a student was marked
// absent at some point; no row means presumed present. Absence percentages and
// the sick-leave appeal flow both depend on this invariant, so it must not be
// "fixed" by inserting presence rows.
type Attendance struct {
	ID               string          `db:"id" json:"id"`
	StudentID        string          `db:"student_id" json:"student_id"`
	LectureID        string          `db:"lecture_id" json:"lecture_id"`
	IsPresent        bool            `db:"is_present" json:"is_present"`
	SickLeaveFile    *string         `db:"sick_leave_file" json:"sick_leave_file,omitempty"`
	SickLeaveStatus  SickLeaveStatus `db:"sick_leave_status" json:"sick_leave_status"`
	SickLeaveComment *string         `db:"sick_leave_comment" json:"sick_leave_comment,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// HasAppeal reports whether the student attached sick-leave evidence.
// NoAppeal is not a stored state; it is the absence of a file reference.
func (a Attendance) HasAppeal() bool {
	return a.SickLeaveFile != nil && *a.SickLeaveFile != ""
}

// AttendanceDetail extends Attendance with joined display data.
type AttendanceDetail struct {
	Attendance
	StudentName string    `db:"student_name" json:"student_name"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
}

// RosterEntry is one line of a lecture's attendance sheet, covering every
// enrolled student whether or not an absence row exists.
type RosterEntry struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	IsPresent   bool   `json:"is_present"`
}

// AbsenceSummary reports a student's absence ratio for one class.
type AbsenceSummary struct {
	StudentID     string  `json:"student_id"`
	ClassID       string  `json:"class_id"`
	ClassName     string  `json:"class_name,omitempty"`
	TotalLectures int     `json:"total_lectures"`
	Absences      int     `json:"absences"`
	Percentage    float64 `json:"percentage"`
}

// StudentClassAbsences couples a class's summary with its absence rows, used
// by the student dashboard.
type StudentClassAbsences struct {
	Summary  AbsenceSummary     `json:"summary"`
	Absences []AttendanceDetail `json:"absences"`
}

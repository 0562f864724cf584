package models

import "time"

// Lecture is a single scheduled session. Rows are immutable once generated;
// a schedule change regenerates the class's lectures wholesale.
type Lecture struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
}

// LectureSlot is a lecture's weekly recurrence position: the weekday plus the
// minutes elapsed since midnight. Conflict detection operates on slots, never
// on concrete dates, since the recurrence repeats identically every week.
type LectureSlot struct {
	Weekday time.Weekday
	Minutes int
}

// SlotOf projects a concrete lecture time onto its weekly slot.
func SlotOf(t time.Time) LectureSlot {
	return LectureSlot{
		Weekday: t.Weekday(),
		Minutes: t.Hour()*60 + t.Minute(),
	}
}

package service

import (
	"fmt"
	"time"

	"github.com/raghad-alharthi/student-management-api/internal/models"
)

// Scheduling policy bounds. Lectures run Sunday through Thursday, starting no
// earlier than 08:00 and strictly before 19:00.
const (
	earliestLectureMinute = 8 * 60
	latestLectureMinute   = 19 * 60

	// DefaultSemesterWeeks is the number of weekly sessions generated for a
	// new class when no override is configured.
	DefaultSemesterWeeks = 15
)

// GenerateLectureDates produces the weekly lecture timestamps for a class.
// It walks forward from start to the first occurrence of weekday (start
// itself counts if the weekdays match), applies timeOfDay, and emits one
// timestamp per week. The function is deterministic and ignores holidays;
// calendars are a presentation concern.
func GenerateLectureDates(start time.Time, weekday time.Weekday, timeOfDay time.Duration, weeks int) []time.Time {
	if weeks <= 0 {
		weeks = DefaultSemesterWeeks
	}

	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for first.Weekday() != weekday {
		first = first.AddDate(0, 0, 1)
	}
	first = first.Add(timeOfDay)

	dates := make([]time.Time, 0, weeks)
	for i := 0; i < weeks; i++ {
		dates = append(dates, first.AddDate(0, 0, 7*i))
	}
	return dates
}

// SlotsConflict reports whether two weekly slots collide. Slots on different
// weekdays never conflict; on the same weekday they conflict when their start
// times are strictly closer than the buffer. A gap of exactly the buffer is
// allowed.
func SlotsConflict(a, b models.LectureSlot, buffer time.Duration) bool {
	if a.Weekday != b.Weekday {
		return false
	}
	gap := a.Minutes - b.Minutes
	if gap < 0 {
		gap = -gap
	}
	return gap < int(buffer.Minutes())
}

// ValidateSlot enforces the institutional scheduling policy on a proposed
// weekly slot.
func ValidateSlot(weekday time.Weekday, timeOfDay time.Duration) error {
	switch weekday {
	case time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
	default:
		return fmt.Errorf("lectures cannot be scheduled on %s", weekday)
	}

	minutes := int(timeOfDay.Minutes())
	if minutes < earliestLectureMinute || minutes >= latestLectureMinute {
		return fmt.Errorf("lecture time %02d:%02d is outside working hours (08:00-19:00)", minutes/60, minutes%60)
	}
	return nil
}

// ParseTimeOfDay converts an "HH:MM" string into an offset from midnight.
func ParseTimeOfDay(raw string) (time.Duration, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(raw, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", raw)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", raw)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

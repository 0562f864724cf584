package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghad-alharthi/student-management-api/internal/models"
)

func TestGenerateLectureDatesStartsOnMatchingDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // a Monday
	dates := GenerateLectureDates(start, time.Monday, 10*time.Hour, 15)

	require.Len(t, dates, 15)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), dates[2])
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, 7*24*time.Hour, dates[i].Sub(dates[i-1]))
	}
}

func TestGenerateLectureDatesWalksToWeekday(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday
	dates := GenerateLectureDates(start, time.Wednesday, 14*time.Hour+30*time.Minute, 4)

	require.Len(t, dates, 4)
	assert.Equal(t, time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC), dates[0])
	for _, d := range dates {
		assert.Equal(t, time.Wednesday, d.Weekday())
	}
}

func TestGenerateLectureDatesDefaultWeeks(t *testing.T) {
	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.Len(t, GenerateLectureDates(start, time.Sunday, 9*time.Hour, 0), DefaultSemesterWeeks)
}

func TestSlotsConflict(t *testing.T) {
	buffer := 2 * time.Hour
	sundayAt := func(minutes int) models.LectureSlot {
		return models.LectureSlot{Weekday: time.Sunday, Minutes: minutes}
	}

	// 90 min gap is inside the buffer.
	assert.True(t, SlotsConflict(sundayAt(10*60), sundayAt(11*60+30), buffer))
	// 150 min gap is clear.
	assert.False(t, SlotsConflict(sundayAt(10*60), sundayAt(12*60+30), buffer))
	// Exactly the buffer apart is allowed.
	assert.False(t, SlotsConflict(sundayAt(10*60), sundayAt(12*60), buffer))
	// Identical slots always collide.
	assert.True(t, SlotsConflict(sundayAt(10*60), sundayAt(10*60), buffer))
	// Different weekdays never collide.
	assert.False(t, SlotsConflict(
		models.LectureSlot{Weekday: time.Sunday, Minutes: 10 * 60},
		models.LectureSlot{Weekday: time.Monday, Minutes: 10 * 60},
		buffer,
	))
	// Ordering of arguments does not matter.
	assert.True(t, SlotsConflict(sundayAt(11*60+30), sundayAt(10*60), buffer))
}

func TestValidateSlot(t *testing.T) {
	assert.NoError(t, ValidateSlot(time.Sunday, 8*time.Hour))
	assert.NoError(t, ValidateSlot(time.Thursday, 18*time.Hour+59*time.Minute))

	assert.Error(t, ValidateSlot(time.Friday, 10*time.Hour))
	assert.Error(t, ValidateSlot(time.Saturday, 10*time.Hour))
	assert.Error(t, ValidateSlot(time.Monday, 7*time.Hour+59*time.Minute))
	// 19:00 itself is out of range.
	assert.Error(t, ValidateSlot(time.Monday, 19*time.Hour))
}

func TestParseTimeOfDay(t *testing.T) {
	d, err := ParseTimeOfDay("10:00")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour, d)

	d, err = ParseTimeOfDay("08:45")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour+45*time.Minute, d)

	_, err = ParseTimeOfDay("24:00")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("10:61")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("morning")
	assert.Error(t, err)
}

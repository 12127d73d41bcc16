package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameDay_AcrossTimezones(t *testing.T) {
	// 23:30 по UTC и 02:30 следующего дня по Москве - один UTC-день.
	msk := time.FixedZone("MSK", 3*60*60)
	a := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	b := time.Date(2025, 3, 11, 2, 30, 0, 0, msk)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, a.Add(time.Hour)))
}

func TestIsNextDay(t *testing.T) {
	a := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)

	assert.True(t, IsNextDay(a, a.Add(2*time.Minute)))
	assert.False(t, IsNextDay(a, a))
	assert.False(t, IsNextDay(a, a.AddDate(0, 0, 2)))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 12, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a.Add(30*time.Minute)))
}

func TestStartAndEndOfDay(t *testing.T) {
	tm := time.Date(2025, 3, 10, 15, 4, 5, 6, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), StartOfDay(tm))
	assert.Equal(t, 23, EndOfDay(tm).Hour())
}

func TestNextOccurrence(t *testing.T) {
	tm := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)

	// 12:00 уже прошло - следующий день.
	assert.Equal(t, time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC), NextOccurrence(tm, 12))
	// 14:00 ещё впереди - сегодня.
	assert.Equal(t, time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC), NextOccurrence(tm, 14))
}

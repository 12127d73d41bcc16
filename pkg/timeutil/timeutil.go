// Package timeutil provides UTC calendar utilities for LevelUp Hub.
// Daily streaks, daily bonuses, and the spotlight schedule all reason in
// whole UTC calendar days, so every helper here normalizes to UTC.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// StartOfDay returns the start of the UTC day (00:00:00) containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the UTC day (23:59:59.999999999) containing t.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}

// IsNextDay reports whether b falls exactly one UTC calendar day after a.
// This is the streak-continuation rule: a claim keeps the streak alive only
// when it lands on the day immediately following the previous claim.
func IsNextDay(a, b time.Time) bool {
	return SameDay(a.UTC().AddDate(0, 0, 1), b)
}

// DaysBetween returns the number of whole UTC calendar days from a to b.
// Negative if b is before a's day.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// DaysSince calculates the number of whole UTC calendar days since t.
func DaysSince(t time.Time) int {
	return DaysBetween(t, Now())
}

// NextOccurrence returns the next time the given UTC hour occurs strictly
// after t. Used to schedule the daily spotlight announcement.
func NextOccurrence(t time.Time, hour int) time.Time {
	u := t.UTC()
	next := time.Date(u.Year(), u.Month(), u.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(u) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatHumanDate is a human-readable format used in profile cards.
	FormatHumanDate = "2 January 2006"
)

// FormatDateStr formats a time as a UTC date string (YYYY-MM-DD).
func FormatDateStr(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// FormatHumanDateStr formats a time as a human-readable UTC date.
func FormatHumanDateStr(t time.Time) string {
	return t.UTC().Format(FormatHumanDate)
}

// Package booking holds the reservation rules as pure functions.
// It is the single authoritative implementation of the opening-hours
// policy, time-window validation and interval-overlap checks; services
// enforce it and clients may only pre-check.
package booking

import (
	"errors"
	"time"
)

const (
	// Granularity is the required minute alignment of start and end times.
	Granularity = 15
	// MinDuration is the shortest allowed reservation in minutes.
	MinDuration = 15
	// HorizonDays is how far ahead a reservation may be placed.
	HorizonDays = 30
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidTime        = errors.New("invalid time")
	ErrInvalidGranularity = errors.New("times must be multiples of 15 minutes")
	ErrInvalidRange       = errors.New("end time must not precede start time")
	ErrTooShort           = errors.New("minimum reservation is 15 minutes")
	ErrClosed             = errors.New("library is closed on that day")
	ErrOutsideHours       = errors.New("time is outside opening hours")
	ErrPastDate           = errors.New("date is in the past")
	ErrTooFarAhead        = errors.New("date is more than 30 days ahead")
	ErrPastTime           = errors.New("start time has already passed")
)

// Window is a validated reservation time window.
type Window struct {
	Date  time.Time
	Start int // minutes since midnight
	End   int
}

// ValidateWindow checks a proposed (date, start, end) against the time
// rules: format, granularity, ordering, minimum duration and opening
// hours. Checks run in order and the first violation wins.
func ValidateWindow(dateStr, startStr, endStr string, now time.Time) (Window, error) {
	date, err := ParseDate(dateStr, now)
	if err != nil {
		return Window{}, ErrInvalidDate
	}

	start, err := ParseClock(startStr)
	if err != nil {
		return Window{}, ErrInvalidTime
	}
	end, err := ParseClock(endStr)
	if err != nil {
		return Window{}, ErrInvalidTime
	}

	if start%Granularity != 0 || end%Granularity != 0 {
		return Window{}, ErrInvalidGranularity
	}
	if start > end {
		return Window{}, ErrInvalidRange
	}
	if end-start < MinDuration {
		return Window{}, ErrTooShort
	}

	hours, open := OpeningHours(date)
	if !open {
		return Window{}, ErrClosed
	}
	if start < hours.Open || end > hours.Close {
		return Window{}, ErrOutsideHours
	}

	return Window{Date: date, Start: start, End: end}, nil
}

// ValidateHorizon checks that a date falls inside [today, today+30] and,
// for same-day reservations, that the start time is still ahead of the
// clock.
func ValidateHorizon(w Window, now time.Time) error {
	today := Today(now)

	if w.Date.Before(today) {
		return ErrPastDate
	}
	if w.Date.After(today.AddDate(0, 0, HorizonDays)) {
		return ErrTooFarAhead
	}
	if w.Date.Equal(today) {
		nowMinutes := now.Hour()*60 + now.Minute()
		if w.Start <= nowMinutes {
			return ErrPastTime
		}
	}
	return nil
}

// Overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Back-to-back reservations touching at a
// shared endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// Expired reports whether an active reservation should transition to
// completed: its date is past, or it is today and the end time has
// been reached.
func Expired(dateStr, endStr string, now time.Time) bool {
	date, err := ParseDate(dateStr, now)
	if err != nil {
		return false
	}
	today := Today(now)
	if date.Before(today) {
		return true
	}
	if !date.Equal(today) {
		return false
	}
	end, err := ParseClock(endStr)
	if err != nil {
		return false
	}
	return end <= now.Hour()*60+now.Minute()
}

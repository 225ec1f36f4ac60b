package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDate   = errors.New("invalid date format")
	ErrInvalidTime   = errors.New("invalid time format")
	ErrInvalidWindow = errors.New("invalid booking window")
)

// Window is the daily range of bookable hour slots: slots start at Open,
// Open+1, ... Close-1 o'clock.
type Window struct {
	Open  int
	Close int
}

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return time.Time{}, ErrInvalidTime
	}
	if _, err := ParseDate(dateStr, loc); err != nil {
		return time.Time{}, err
	}

	parsed, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return parsed, nil
}

// SlotHour returns the hour component of an HH:MM slot string. Slots are
// hour-granular, so minutes other than 00 are rejected.
func SlotHour(timeStr string) (int, error) {
	tm, err := time.Parse("15:04", timeStr)
	if err != nil {
		return 0, ErrInvalidTime
	}
	if tm.Minute() != 0 {
		return 0, ErrInvalidTime
	}
	return tm.Hour(), nil
}

func HourToClock(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// GenerateSlots lists every candidate hour slot for a date, reserved or not.
func GenerateSlots(dateStr string, win Window, loc *time.Location) ([]string, error) {
	if _, err := ParseDate(dateStr, loc); err != nil {
		return nil, err
	}
	if win.Open < 0 || win.Close > 24 || win.Open >= win.Close {
		return nil, ErrInvalidWindow
	}

	slots := make([]string, 0, win.Close-win.Open)
	for h := win.Open; h < win.Close; h++ {
		slots = append(slots, HourToClock(h))
	}
	return slots, nil
}

// FilterReserved drops the slots whose hour is already taken.
func FilterReserved(slots []string, reserved map[int]bool) []string {
	filtered := make([]string, 0, len(slots))
	for _, s := range slots {
		hour, err := SlotHour(s)
		if err != nil {
			continue
		}
		if !reserved[hour] {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// MeetsLeadTime reports whether a slot starts at least lead after now. The
// booking flow rejects anything closer before a payment is ever attempted.
func MeetsLeadTime(dateStr, timeStr string, loc *time.Location, now time.Time, lead time.Duration) (bool, error) {
	slot, err := ParseDateTime(dateStr, timeStr, loc)
	if err != nil {
		return false, err
	}
	return !slot.Before(now.In(loc).Add(lead)), nil
}

// FilterLeadTime keeps only the slots a customer could still book.
func FilterLeadTime(dateStr string, slots []string, loc *time.Location, now time.Time, lead time.Duration) ([]string, error) {
	filtered := make([]string, 0, len(slots))
	for _, s := range slots {
		ok, err := MeetsLeadTime(dateStr, s, loc, now, lead)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

// IsSlotInWindow reports whether a slot string is one of the candidates the
// window generates for the date.
func IsSlotInWindow(dateStr, timeStr string, win Window, loc *time.Location) (bool, error) {
	slots, err := GenerateSlots(dateStr, win, loc)
	if err != nil {
		return false, err
	}
	for _, s := range slots {
		if s == timeStr {
			return true, nil
		}
	}
	return false, nil
}

// IsPast reports whether the slot's start is before now, used to gate
// feedback to attended activities.
func IsPast(dateStr, timeStr string, loc *time.Location, now time.Time) (bool, error) {
	slot, err := ParseDateTime(dateStr, timeStr, loc)
	if err != nil {
		return false, err
	}
	return slot.Before(now.In(loc)), nil
}

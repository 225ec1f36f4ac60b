package schedule

import (
	"errors"
	"testing"
	"time"
)

func mustLoadLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Malta")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestGenerateSlots(t *testing.T) {
	loc := mustLoadLoc(t)
	slots, err := GenerateSlots("2026-09-10", Window{Open: 9, Close: 18}, loc)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	if len(slots) != 9 {
		t.Fatalf("expected 9 slots, got %d", len(slots))
	}
	if slots[0] != "09:00" || slots[len(slots)-1] != "17:00" {
		t.Fatalf("unexpected boundary slots: %v", slots)
	}
}

func TestGenerateSlotsBadWindow(t *testing.T) {
	loc := mustLoadLoc(t)
	if _, err := GenerateSlots("2026-09-10", Window{Open: 18, Close: 9}, loc); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestGenerateSlotsBadDate(t *testing.T) {
	loc := mustLoadLoc(t)
	if _, err := GenerateSlots("10/09/2026", Window{Open: 9, Close: 18}, loc); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestSlotHour(t *testing.T) {
	hour, err := SlotHour("14:00")
	if err != nil {
		t.Fatalf("SlotHour error: %v", err)
	}
	if hour != 14 {
		t.Fatalf("expected 14, got %d", hour)
	}

	if _, err := SlotHour("14:30"); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime for half-hour, got %v", err)
	}
	if _, err := SlotHour("2pm"); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
}

func TestFilterReserved(t *testing.T) {
	slots := []string{"09:00", "10:00", "11:00"}
	reserved := map[int]bool{10: true}
	filtered := FilterReserved(slots, reserved)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(filtered))
	}
	if filtered[1] != "11:00" {
		t.Fatalf("unexpected slots: %v", filtered)
	}
}

func TestMeetsLeadTime(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 9, 10, 10, 0, 0, 0, loc)
	lead := 24 * time.Hour

	ok, err := MeetsLeadTime("2026-09-11", "10:00", loc, now, lead)
	if err != nil {
		t.Fatalf("MeetsLeadTime error: %v", err)
	}
	if !ok {
		t.Fatalf("slot exactly 24h out should meet the lead time")
	}

	ok, err = MeetsLeadTime("2026-09-11", "09:00", loc, now, lead)
	if err != nil {
		t.Fatalf("MeetsLeadTime error: %v", err)
	}
	if ok {
		t.Fatalf("slot 23h out should not meet the lead time")
	}
}

func TestFilterLeadTime(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 9, 10, 12, 30, 0, 0, loc)
	slots := []string{"09:00", "12:00", "13:00", "14:00"}

	filtered, err := FilterLeadTime("2026-09-11", slots, loc, now, 24*time.Hour)
	if err != nil {
		t.Fatalf("FilterLeadTime error: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 slots, got %v", filtered)
	}
	if filtered[0] != "13:00" || filtered[1] != "14:00" {
		t.Fatalf("unexpected slots: %v", filtered)
	}
}

func TestIsSlotInWindow(t *testing.T) {
	loc := mustLoadLoc(t)
	win := Window{Open: 9, Close: 18}

	ok, err := IsSlotInWindow("2026-09-10", "09:00", win, loc)
	if err != nil {
		t.Fatalf("IsSlotInWindow error: %v", err)
	}
	if !ok {
		t.Fatalf("expected opening slot to be in window")
	}

	ok, err = IsSlotInWindow("2026-09-10", "18:00", win, loc)
	if err != nil {
		t.Fatalf("IsSlotInWindow error: %v", err)
	}
	if ok {
		t.Fatalf("closing hour must not be bookable")
	}

	ok, err = IsSlotInWindow("2026-09-10", "09:30", win, loc)
	if err != nil {
		t.Fatalf("IsSlotInWindow error: %v", err)
	}
	if ok {
		t.Fatalf("half-hour slot must not be in window")
	}
}

func TestIsPast(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 9, 10, 10, 0, 0, 0, loc)

	past, err := IsPast("2026-09-10", "09:00", loc, now)
	if err != nil {
		t.Fatalf("IsPast error: %v", err)
	}
	if !past {
		t.Fatalf("expected slot to be past")
	}

	past, err = IsPast("2026-09-10", "11:00", loc, now)
	if err != nil {
		t.Fatalf("IsPast error: %v", err)
	}
	if past {
		t.Fatalf("expected slot to be future")
	}
}

package main

import (
	"testing"
	"time"
)

func TestLastOccurrence(t *testing.T) {
	// Wednesday 2025-03-05 12:00 UTC.
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

	got, ok := lastOccurrence(now, "Monday", "9:00")
	if !ok {
		t.Fatal("Expected an occurrence")
	}
	want := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("lastOccurrence = %s, want %s", got, want)
	}
}

func TestLastOccurrenceSameDayBeforeTime(t *testing.T) {
	// Monday 08:00: this week's 9:00 slot has not happened yet, so the
	// occurrence is last Monday.
	now := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

	got, ok := lastOccurrence(now, "Monday", "9:00")
	if !ok {
		t.Fatal("Expected an occurrence")
	}
	want := time.Date(2025, 2, 24, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("lastOccurrence = %s, want %s", got, want)
	}
}

func TestLastOccurrenceSameDayAfterTime(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

	got, ok := lastOccurrence(now, "monday", "9:00")
	if !ok {
		t.Fatal("Expected an occurrence")
	}
	want := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("lastOccurrence = %s, want %s", got, want)
	}
}

func TestLastOccurrenceInvalidInput(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	if _, ok := lastOccurrence(now, "Funday", "9:00"); ok {
		t.Error("Expected no occurrence for an unknown weekday")
	}
	if _, ok := lastOccurrence(now, "Monday", "25:00"); ok {
		t.Error("Expected no occurrence for an invalid time")
	}
}

func TestOccurrenceDue(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	occurrence := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	// Never posted: due.
	due, at := occurrenceDue(now, nil, "Monday", "9:00")
	if !due {
		t.Error("Expected due when never acted on")
	}
	if !at.Equal(occurrence) {
		t.Errorf("Occurrence = %s, want %s", at, occurrence)
	}

	// Acted on before the occurrence: due again.
	stale := occurrence.AddDate(0, 0, -7)
	if due, _ := occurrenceDue(now, &stale, "Monday", "9:00"); !due {
		t.Error("Expected due when last action predates the occurrence")
	}

	// Acted on after the occurrence: not due.
	recent := occurrence.Add(time.Minute)
	if due, _ := occurrenceDue(now, &recent, "Monday", "9:00"); due {
		t.Error("Expected not due when already acted on")
	}

	// Zero time behaves like never.
	var zero time.Time
	if due, _ := occurrenceDue(now, &zero, "Monday", "9:00"); !due {
		t.Error("Expected due for a zero last-acted time")
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"9:00", 9, 0, true},
		{"18:30", 18, 30, true},
		{"0:00", 0, 0, true},
		{"23:59", 23, 59, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"noon", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		hour, minute, ok := parseClock(tc.in)
		if ok != tc.ok || hour != tc.hour || minute != tc.minute {
			t.Errorf("parseClock(%q) = %d, %d, %v", tc.in, hour, minute, ok)
		}
	}
}

package datetime

import (
	"testing"
	"time"
)

func mustParse(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestYesterdayAt(t *testing.T) {
	now := mustParse("2006-01-02T15:04:05", "2024-03-02T10:00:00")
	got, ok := Parse("Yesterday at 2:30 PM", now)
	if !ok {
		t.Fatalf("expected parse success")
	}
	want := mustParse("2006-01-02T15:04:05", "2024-03-01T14:30:00")
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRelativeMinutes(t *testing.T) {
	now := mustParse("2006-01-02T15:04:05", "2024-03-02T10:00:00")
	got, ok := Parse("7m", now)
	if !ok {
		t.Fatalf("expected parse success")
	}
	want := now.Add(-7 * time.Minute)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWeekdayTimeResolvesToPast(t *testing.T) {
	// 2024-03-02 is a Saturday.
	now := mustParse("2006-01-02T15:04:05", "2024-03-02T10:00:00")
	got, ok := Parse("THU 2:27 PM", now)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if got.After(now) {
		t.Fatalf("resolved weekday time %v is in the future relative to %v", got, now)
	}
	if got.Weekday() != time.Thursday {
		t.Fatalf("expected Thursday, got %v", got.Weekday())
	}
}

func TestMonthDayTimeYearInference(t *testing.T) {
	now := mustParse("2006-01-02T15:04:05", "2024-01-15T10:00:00")
	got, ok := Parse("NOV 07, 4:27 AM", now)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if got.Year() != 2023 {
		t.Fatalf("expected year rolled back to 2023 since Nov 7 is after now, got %d", got.Year())
	}
}

func TestNumericFormat(t *testing.T) {
	got, ok := Parse("03/02/2024, 2:30 PM", time.Now())
	if !ok {
		t.Fatalf("expected parse success")
	}
	if got.Month() != time.March || got.Day() != 2 || got.Year() != 2024 {
		t.Fatalf("got %v", got)
	}
}

func TestWhatsAppTimeOnly(t *testing.T) {
	now := mustParse("2006-01-02T15:04:05", "2024-03-02T10:00:00")
	got, ok := Parse("3:02 PM", now)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if got.Day() != now.Day() || got.Hour() != 15 || got.Minute() != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestUnrecognizedReturnsFalse(t *testing.T) {
	if _, ok := Parse("not a date", time.Now()); ok {
		t.Fatalf("expected failure for unrecognized string")
	}
}

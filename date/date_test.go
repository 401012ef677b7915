package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNewNormalizes(t *testing.T) {
	if got, want := New(2025, 2, 30), New(2025, 3, 2); got != want {
		t.Errorf("New(2025, 2, 30) = %v, want %v", got, want)
	}
	if got, want := New(2025, 1, 1).Add(-1), New(2024, 12, 31); got != want {
		t.Errorf("Add(-1) = %v, want %v", got, want)
	}
}

func TestOfKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	ts := time.Date(2025, 3, 1, 1, 30, 0, 0, loc) // still Feb 28 in UTC
	if got, want := Of(ts), New(2025, 3, 1); got != want {
		t.Errorf("Of(%v) = %v, want %v", ts, got, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-07-01", New(2025, 7, 1), false},
		{"2025-7-1", New(2025, 7, 1), false},
		{"01/07/2025", Date{}, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDaysSince(t *testing.T) {
	a, b := New(2024, 2, 27), New(2024, 3, 2)
	if got := b.DaysSince(a); got != 4 {
		t.Errorf("DaysSince() = %d, want 4", got)
	}
	if got := a.DaysSince(b); got != -4 {
		t.Errorf("DaysSince() = %d, want -4", got)
	}
}

func TestJSON(t *testing.T) {
	d := New(2025, 9, 8)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `"2025-09-08"` {
		t.Errorf("MarshalJSON() = %s, want %q", b, "2025-09-08")
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if back != d {
		t.Errorf("UnmarshalJSON() = %v, want %v", back, d)
	}
}

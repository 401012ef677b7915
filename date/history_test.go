package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Appending two values in reverse order must keep the series sorted.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[0] != d2 || h.days[1] != d1 {
		t.Errorf("history days = %v want [%v %v]", h.days, d2, d1)
	}
	if h.values[0] != v2 || h.values[1] != v1 {
		t.Errorf("history values = %v want [%v %v]", h.values, v2, v1)
	}

	h.Append(d1, "replaced")
	if h.Len() != 2 {
		t.Errorf("Append(d1, replaced).Len() = %v want 2", h.Len())
	}
	if got, _ := h.Get(d1); got != "replaced" {
		t.Errorf("Get(d1) = %q want %q", got, "replaced")
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2025, 1, 6), 10) // Monday
	h.Append(New(2025, 1, 8), 12) // Wednesday

	tests := []struct {
		on     Date
		want   float64
		wantOk bool
	}{
		{New(2025, 1, 5), 0, false},
		{New(2025, 1, 6), 10, true},
		{New(2025, 1, 7), 10, true}, // forward-filled, not interpolated
		{New(2025, 1, 8), 12, true},
		{New(2025, 2, 1), 12, true},
	}
	for _, tt := range tests {
		got, ok := h.ValueAsOf(tt.on)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ValueAsOf(%v) = %v, %v want %v, %v", tt.on, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestNilHistory(t *testing.T) {
	var h *History[float64]
	if h.Len() != 0 {
		t.Errorf("nil.Len() = %d, want 0", h.Len())
	}
	if _, ok := h.ValueAsOf(Today()); ok {
		t.Errorf("nil.ValueAsOf() found a value")
	}
	if _, ok := h.Get(Today()); ok {
		t.Errorf("nil.Get() found a value")
	}
}

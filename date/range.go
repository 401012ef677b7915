package date

import (
	"fmt"
	"iter"
)

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// Window returns the trailing range of n+1 days ending on 'end'.
func Window(end Date, n int) Range {
	if n < 0 {
		n = 0
	}
	return Range{From: end.Add(-n), To: end}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

// Len returns the number of days in the range, zero if To is before From.
func (r Range) Len() int {
	if r.To.Before(r.From) {
		return 0
	}
	return r.To.DaysSince(r.From) + 1
}

// Days iterates over every day of the range in chronological order.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// String returns "from_to".
func (r Range) String() string { return fmt.Sprintf("%s_%s", r.From, r.To) }

package domain

import "time"

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an interval starting at start and lasting d
func NewInterval(start time.Time, d time.Duration) Interval {
	return Interval{Start: start, End: start.Add(d)}
}

// Overlaps reports whether two half-open intervals intersect.
// Touching intervals (one ends where the other starts) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// IsValid returns true if End is strictly after Start
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// Split cuts the interval into consecutive segments of the given step.
// The last segment is shortened to End.
func (i Interval) Split(step time.Duration) []Interval {
	if step <= 0 || !i.IsValid() {
		return []Interval{i}
	}

	segments := make([]Interval, 0, int(i.End.Sub(i.Start)/step)+1)
	for cur := i.Start; cur.Before(i.End); cur = cur.Add(step) {
		end := cur.Add(step)
		if end.After(i.End) {
			end = i.End
		}
		segments = append(segments, Interval{Start: cur, End: end})
	}
	return segments
}

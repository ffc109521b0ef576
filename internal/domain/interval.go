package domain

import "time"

const (
	MinutesPerDay          = 24 * 60
	SlotGranularityMinutes = 15
)

// TimeInterval is a half-open [Start, End) range expressed in minutes since
// midnight. Wraps marks an interval that crosses the day boundary; it is
// computed once at construction and carried explicitly instead of being
// re-derived from the ordering of Start and End.
//
// For non-wrap intervals End may equal MinutesPerDay (an interval ending
// exactly at midnight). Wrap intervals keep both bounds inside a single day.
type TimeInterval struct {
	Start int
	End   int
	Wraps bool
}

func NewInterval(start, end int) TimeInterval {
	return TimeInterval{Start: start, End: end, Wraps: end < start}
}

// Valid reports whether the interval is structurally sound. Whether a wrap
// interval is acceptable at all is up to the caller: persisted bookings
// reject wrap, the weekly-hours validator allows it.
func (i TimeInterval) Valid() bool {
	if i.Start == i.End {
		return false
	}
	if i.Wraps {
		return i.Start > 0 && i.Start < MinutesPerDay && i.End > 0 && i.End < i.Start
	}
	return i.Start >= 0 && i.Start < i.End && i.End <= MinutesPerDay
}

func (i TimeInterval) DurationMinutes() int {
	d := (i.End - i.Start) % MinutesPerDay
	if d <= 0 {
		d += MinutesPerDay
	}
	return d
}

// Overlaps applies the half-open rule: two same-day intervals overlap iff
// a.Start < b.End && b.Start < a.End. Two wrap intervals both cover the
// midnight instant and therefore always overlap. A same-day interval overlaps
// a wrap interval iff it intersects either the evening leg [w.Start, day end)
// or the morning leg [0, w.End).
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	switch {
	case i.Wraps && other.Wraps:
		return true
	case !i.Wraps && !other.Wraps:
		return i.Start < other.End && other.Start < i.End
	case i.Wraps:
		return other.overlapsWrap(i)
	default:
		return i.overlapsWrap(other)
	}
}

// receiver is same-day, w wraps.
func (i TimeInterval) overlapsWrap(w TimeInterval) bool {
	return w.Start < i.End || i.Start < w.End
}

// Contains reports whether other lies entirely within i.
func (i TimeInterval) Contains(other TimeInterval) bool {
	switch {
	case i.Wraps && other.Wraps:
		return i.Start <= other.Start && other.End <= i.End
	case i.Wraps:
		// other must fit inside one leg of the wrap
		return other.Start >= i.Start || other.End <= i.End
	case other.Wraps:
		return false
	default:
		return i.Start <= other.Start && other.End <= i.End
	}
}

func (i TimeInterval) ContainedBy(other TimeInterval) bool {
	return other.Contains(i)
}

// ValidSlotDuration reports whether d is usable as a bookable slot length:
// positive and aligned to the slot granularity.
func ValidSlotDuration(d int) bool {
	return d >= SlotGranularityMinutes && d%SlotGranularityMinutes == 0
}

// DayStart truncates t to midnight UTC of its calendar day.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// MinuteOfDay returns how many whole minutes into its UTC day t falls.
func MinuteOfDay(t time.Time) int {
	u := t.UTC()
	return u.Hour()*60 + u.Minute()
}

// OnDay resolves a non-wrap interval to absolute UTC timestamps on the day
// containing dayStart.
func (i TimeInterval) OnDay(dayStart time.Time) (start, end time.Time) {
	base := DayStart(dayStart)
	return base.Add(time.Duration(i.Start) * time.Minute),
		base.Add(time.Duration(i.End) * time.Minute)
}

package domain

// DeclaredSlot is one entry of a person's declared weekly hours, expressed in
// minutes since midnight. End < Start means the entry wraps past midnight
// ("10 PM to 2 AM"), which is legal here even though persisted bookings
// reject it.
type DeclaredSlot struct {
	Start int
	End   int
}

type DeclaredSlotReason string

const (
	DeclaredSlotSelfInvalid DeclaredSlotReason = "self-invalid"
	DeclaredSlotOverlap     DeclaredSlotReason = "overlap"
)

// DeclaredSlotCheck reports the validity of the declared slot at Index.
// Reason is empty when Valid is true.
type DeclaredSlotCheck struct {
	Index  int
	Valid  bool
	Reason DeclaredSlotReason
}

// ValidateDeclaredHours checks a single day's declared slots against each
// other. An entry is valid iff it is structurally sound and overlaps no other
// entry in the list. Entries that fail on their own are reported as
// self-invalid and excluded from the pairwise pass, so one malformed entry
// does not poison its neighbours. The list is a handful of entries per day;
// the pairwise check is quadratic on purpose.
func ValidateDeclaredHours(slots []DeclaredSlot) []DeclaredSlotCheck {
	intervals := make([]TimeInterval, len(slots))
	out := make([]DeclaredSlotCheck, len(slots))

	for i, s := range slots {
		intervals[i] = NewInterval(s.Start, s.End)
		out[i] = DeclaredSlotCheck{Index: i, Valid: true}
		if !intervals[i].Valid() {
			out[i].Valid = false
			out[i].Reason = DeclaredSlotSelfInvalid
		}
	}

	for i := range intervals {
		if out[i].Reason == DeclaredSlotSelfInvalid {
			continue
		}
		for j := range intervals {
			if j == i || out[j].Reason == DeclaredSlotSelfInvalid {
				continue
			}
			if intervals[i].Overlaps(intervals[j]) {
				out[i].Valid = false
				out[i].Reason = DeclaredSlotOverlap
				break
			}
		}
	}

	return out
}

package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"talenthub/backend/internal/domain"
	"talenthub/backend/internal/store"
)

// ValidationError marks a client input problem. It is never retried and the
// message is safe to surface verbatim.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

var (
	// ErrAlreadyBooked: the requester already holds an active interview booking.
	ErrAlreadyBooked = errors.New("owner already has an active booking")
	// ErrSlotConflict: the requested time overlaps an existing booking, or the
	// exact slot is already booked.
	ErrSlotConflict = errors.New("slot is no longer available")
)

type Service struct {
	repo store.SlotRepository
}

func NewService(repo store.SlotRepository) *Service {
	return &Service{repo: repo}
}

// Book reserves the interval starting at startTime for ownerRef. All checks
// and the write run in one transaction. When a concurrent writer wins the
// race on the exact same interval, the insert fails on the uniqueness
// constraint and the whole attempt is retried once against the new state; a
// second duplicate failure surfaces as ErrSlotConflict.
func (s *Service) Book(ctx context.Context, startTime time.Time, durationMinutes int, ownerRef string) (domain.InterviewSlot, error) {
	if ownerRef == "" {
		return domain.InterviewSlot{}, validationError("owner_ref is required")
	}
	start, end, err := resolveSpan(startTime, durationMinutes)
	if err != nil {
		return domain.InterviewSlot{}, err
	}

	out, err := s.bookOnce(ctx, start, end, ownerRef)
	if errors.Is(err, store.ErrDuplicateSlot) {
		out, err = s.bookOnce(ctx, start, end, ownerRef)
		if errors.Is(err, store.ErrDuplicateSlot) {
			return domain.InterviewSlot{}, ErrSlotConflict
		}
	}
	if errors.Is(err, store.ErrOwnerBooked) {
		return domain.InterviewSlot{}, ErrAlreadyBooked
	}
	if errors.Is(err, store.ErrOverlap) {
		return domain.InterviewSlot{}, ErrSlotConflict
	}
	if err != nil {
		return domain.InterviewSlot{}, err
	}
	return out, nil
}

func (s *Service) bookOnce(ctx context.Context, start, end time.Time, ownerRef string) (domain.InterviewSlot, error) {
	var out domain.InterviewSlot
	err := s.repo.InTransaction(ctx, func(ctx context.Context, tx store.SlotTx) error {
		active, err := tx.FindActiveBookingFor(ctx, ownerRef)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrAlreadyBooked
		}

		conflicts, err := tx.FindConflicting(ctx, start, end, uuid.Nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrSlotConflict
		}

		exact, err := tx.FindExact(ctx, start, end)
		if err != nil {
			return err
		}
		if exact != nil {
			if exact.Status == domain.SlotStatusBooked {
				return ErrSlotConflict
			}
			updated, err := tx.UpdateStatus(ctx, exact.ID, domain.SlotStatusBooked, ownerRef)
			if err != nil {
				return err
			}
			out = updated
			return nil
		}

		created, err := tx.Insert(ctx, domain.InterviewSlot{
			StartTime: start,
			EndTime:   end,
			Status:    domain.SlotStatusBooked,
			OwnerRef:  ownerRef,
		})
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return domain.InterviewSlot{}, err
	}
	return out, nil
}

// CreateSlot registers a slot explicitly. With an ownerRef it behaves exactly
// like Book; without one it creates an AVAILABLE placeholder that a later
// Book call for the same interval will reuse.
func (s *Service) CreateSlot(ctx context.Context, startTime time.Time, durationMinutes int, ownerRef string) (domain.InterviewSlot, error) {
	if ownerRef != "" {
		return s.Book(ctx, startTime, durationMinutes, ownerRef)
	}

	start, end, err := resolveSpan(startTime, durationMinutes)
	if err != nil {
		return domain.InterviewSlot{}, err
	}

	var out domain.InterviewSlot
	err = s.repo.InTransaction(ctx, func(ctx context.Context, tx store.SlotTx) error {
		conflicts, err := tx.FindConflicting(ctx, start, end, uuid.Nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrSlotConflict
		}

		exact, err := tx.FindExact(ctx, start, end)
		if err != nil {
			return err
		}
		if exact != nil {
			return ErrSlotConflict
		}

		created, err := tx.Insert(ctx, domain.InterviewSlot{
			StartTime: start,
			EndTime:   end,
			Status:    domain.SlotStatusAvailable,
		})
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if errors.Is(err, store.ErrDuplicateSlot) {
		return domain.InterviewSlot{}, ErrSlotConflict
	}
	if err != nil {
		return domain.InterviewSlot{}, err
	}
	return out, nil
}

// Release returns a booked slot to the pool and clears its owner.
func (s *Service) Release(ctx context.Context, slotID uuid.UUID) (domain.InterviewSlot, error) {
	if slotID == uuid.Nil {
		return domain.InterviewSlot{}, validationError("slot_id is required")
	}

	var out domain.InterviewSlot
	err := s.repo.InTransaction(ctx, func(ctx context.Context, tx store.SlotTx) error {
		slot, err := tx.FindByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return store.ErrNotFound
		}
		if slot.Status != domain.SlotStatusBooked {
			return validationError("slot is not booked")
		}
		updated, err := tx.UpdateStatus(ctx, slotID, domain.SlotStatusAvailable, "")
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.InterviewSlot{}, err
	}
	return out, nil
}

type SuggestionReason string

const (
	ReasonAlreadyBooked        SuggestionReason = "ALREADY_BOOKED"
	ReasonConflictsWithBooking SuggestionReason = "CONFLICTS_WITH_BOOKING"
)

// SuggestionCandidate is an ephemeral bookable candidate. Reason is empty
// when the candidate is available.
type SuggestionCandidate struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
	Reason    SuggestionReason
}

type DaySuggestions struct {
	Suggestions   []SuggestionCandidate
	ExistingSlots []domain.InterviewSlot
}

// Suggestions enumerates candidates of the requested duration across the UTC
// day containing day, one starting every 15 minutes until the last one that
// still fits before midnight. Candidates deliberately overlap each other so a
// caller can pick any aligned start time. The day's slots are read once and
// the annotation loop is pure.
func (s *Service) Suggestions(ctx context.Context, day time.Time, durationMinutes int) (DaySuggestions, error) {
	if !domain.ValidSlotDuration(durationMinutes) {
		return DaySuggestions{}, invalidDuration(durationMinutes)
	}

	dayStart := domain.DayStart(day)
	existing, err := s.repo.ListDay(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return DaySuggestions{}, err
	}

	booked := make([]domain.InterviewSlot, 0, len(existing))
	for _, slot := range existing {
		if slot.Status == domain.SlotStatusBooked {
			booked = append(booked, slot)
		}
	}

	var out []SuggestionCandidate
	for offset := 0; offset+durationMinutes <= domain.MinutesPerDay; offset += domain.SlotGranularityMinutes {
		candidate := domain.TimeInterval{Start: offset, End: offset + durationMinutes}
		start, end := candidate.OnDay(dayStart)

		c := SuggestionCandidate{StartTime: start, EndTime: end, Available: true}
		for i := range booked {
			if booked[i].StartTime.Equal(start) && booked[i].EndTime.Equal(end) {
				c.Available = false
				c.Reason = ReasonAlreadyBooked
				break
			}
		}
		if c.Available {
			for i := range booked {
				if candidate.Overlaps(booked[i].Interval()) {
					c.Available = false
					c.Reason = ReasonConflictsWithBooking
					break
				}
			}
		}
		out = append(out, c)
	}

	return DaySuggestions{Suggestions: out, ExistingSlots: existing}, nil
}

// resolveSpan validates the duration and the slot's position within its day
// and returns the absolute UTC span. Persisted slots may not cross midnight.
func resolveSpan(startTime time.Time, durationMinutes int) (start, end time.Time, err error) {
	if !domain.ValidSlotDuration(durationMinutes) {
		return time.Time{}, time.Time{}, invalidDuration(durationMinutes)
	}

	start = startTime.UTC().Truncate(time.Minute)
	if !start.Equal(startTime.UTC()) {
		return time.Time{}, time.Time{}, validationError("start_time must fall on a whole minute")
	}
	if domain.MinuteOfDay(start)+durationMinutes > domain.MinutesPerDay {
		return time.Time{}, time.Time{}, validationError("slot may not cross midnight")
	}

	return start, start.Add(time.Duration(durationMinutes) * time.Minute), nil
}

func invalidDuration(d int) error {
	return validationError(fmt.Sprintf("duration_minutes must be a positive multiple of %d, got %d", domain.SlotGranularityMinutes, d))
}

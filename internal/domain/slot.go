package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "AVAILABLE"
	SlotStatusBooked    SlotStatus = "BOOKED"
)

// InterviewSlot is a bookable time span. OwnerRef is set only while the slot
// is BOOKED; it references the application the interview belongs to. Removed
// slots are soft-deleted so the (start_time, end_time) uniqueness constraint
// only applies to live rows.
type InterviewSlot struct {
	bun.BaseModel `bun:"table:interview_slots"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	StartTime time.Time  `bun:"start_time,notnull"`
	EndTime   time.Time  `bun:"end_time,notnull"`
	Status    SlotStatus `bun:"status,notnull"`
	OwnerRef  string     `bun:"owner_ref,nullzero"`
	DeletedAt time.Time  `bun:"deleted_at,soft_delete,nullzero"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
	UpdatedAt time.Time  `bun:"updated_at,notnull"`
}

func (s *InterviewSlot) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}

func (s *InterviewSlot) DurationMinutes() int {
	return int(s.EndTime.Sub(s.StartTime) / time.Minute)
}

// Interval projects the slot onto its day as a minutes-since-midnight range.
// Persisted slots never wrap, so the projection is always a same-day interval.
func (s *InterviewSlot) Interval() TimeInterval {
	start := MinuteOfDay(s.StartTime)
	return TimeInterval{Start: start, End: start + s.DurationMinutes()}
}

package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"talenthub/backend/internal/domain"
)

// SlotRepository is the persistence boundary for interview slots. Reads that
// do not participate in a booking decision go through the repository
// directly; anything that decides and then writes must run inside
// InTransaction so the conflict checks and the write see one snapshot.
type SlotRepository interface {
	ListDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.InterviewSlot, error)
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx SlotTx) error) error
}

// SlotTx is the per-transaction view of the slot table. Find methods return
// nil when nothing matches; only live (non-deleted) rows are visible.
type SlotTx interface {
	FindByID(ctx context.Context, slotID uuid.UUID) (*domain.InterviewSlot, error)
	FindExact(ctx context.Context, start, end time.Time) (*domain.InterviewSlot, error)
	FindConflicting(ctx context.Context, start, end time.Time, excludeID uuid.UUID) ([]domain.InterviewSlot, error)
	FindActiveBookingFor(ctx context.Context, ownerRef string) (*domain.InterviewSlot, error)
	Insert(ctx context.Context, slot domain.InterviewSlot) (domain.InterviewSlot, error)
	UpdateStatus(ctx context.Context, slotID uuid.UUID, status domain.SlotStatus, ownerRef string) (domain.InterviewSlot, error)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"talenthub/backend/internal/domain"
	"talenthub/backend/internal/store"
)

// slotCalendarLockKey serializes booking transactions against one advisory
// lock. The slot table is a single shared calendar, so the lock key is a
// constant; the (start_time, end_time) uniqueness constraint remains as the
// backstop if the lock is ever bypassed.
const slotCalendarLockKey = "interview_slots"

type SlotRepo struct {
	db *bun.DB
}

func NewSlotRepo(db *bun.DB) *SlotRepo {
	return &SlotRepo{db: db}
}

type slotTx struct {
	tx bun.Tx
}

func (r *SlotRepo) ListDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.InterviewSlot, error) {
	var rows []domain.InterviewSlot
	err := r.db.NewSelect().
		Model(&rows).
		Where("start_time >= ?", dayStart).
		Where("start_time < ?", dayEnd).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SlotRepo) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.SlotTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockSlotCalendar(ctx, tx); err != nil {
			return err
		}
		return fn(ctx, slotTx{tx: tx})
	})
}

func lockSlotCalendar(ctx context.Context, tx bun.Tx) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", slotCalendarLockKey).Exec(ctx)
	return err
}

func (r slotTx) FindByID(ctx context.Context, slotID uuid.UUID) (*domain.InterviewSlot, error) {
	var m domain.InterviewSlot
	err := r.tx.NewSelect().
		Model(&m).
		Where("id = ?", slotID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r slotTx) FindExact(ctx context.Context, start, end time.Time) (*domain.InterviewSlot, error) {
	var m domain.InterviewSlot
	err := r.tx.NewSelect().
		Model(&m).
		Where("start_time = ?", start).
		Where("end_time = ?", end).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r slotTx) FindConflicting(ctx context.Context, start, end time.Time, excludeID uuid.UUID) ([]domain.InterviewSlot, error) {
	var rows []domain.InterviewSlot
	q := r.tx.NewSelect().
		Model(&rows).
		Where("status = ?", domain.SlotStatusBooked).
		Where("start_time < ?", end).
		Where("end_time > ?", start)
	if excludeID != uuid.Nil {
		q = q.Where("id != ?", excludeID)
	}

	if err := q.OrderExpr("start_time ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r slotTx) FindActiveBookingFor(ctx context.Context, ownerRef string) (*domain.InterviewSlot, error) {
	var m domain.InterviewSlot
	err := r.tx.NewSelect().
		Model(&m).
		Where("owner_ref = ?", ownerRef).
		Where("status = ?", domain.SlotStatusBooked).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r slotTx) Insert(ctx context.Context, slot domain.InterviewSlot) (domain.InterviewSlot, error) {
	m := domain.InterviewSlot{
		ID:        slot.ID,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Status:    slot.Status,
		OwnerRef:  slot.OwnerRef,
		CreatedAt: slot.CreatedAt,
		UpdatedAt: slot.UpdatedAt,
	}

	_, err := r.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return domain.InterviewSlot{}, mapped
		}
		return domain.InterviewSlot{}, err
	}

	slot.ID = m.ID
	slot.CreatedAt = m.CreatedAt
	slot.UpdatedAt = m.UpdatedAt
	return slot, nil
}

func (r slotTx) UpdateStatus(ctx context.Context, slotID uuid.UUID, status domain.SlotStatus, ownerRef string) (domain.InterviewSlot, error) {
	q := r.tx.NewUpdate().
		Model((*domain.InterviewSlot)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", slotID).
		Where("deleted_at IS NULL")
	if ownerRef == "" {
		q = q.Set("owner_ref = NULL")
	} else {
		q = q.Set("owner_ref = ?", ownerRef)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return domain.InterviewSlot{}, mapped
		}
		return domain.InterviewSlot{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InterviewSlot{}, err
	}
	if affected == 0 {
		return domain.InterviewSlot{}, store.ErrNotFound
	}

	updated, err := r.FindByID(ctx, slotID)
	if err != nil {
		return domain.InterviewSlot{}, err
	}
	if updated == nil {
		return domain.InterviewSlot{}, store.ErrNotFound
	}
	return *updated, nil
}

// mapConstraintError translates Postgres constraint violations into store
// sentinels. Returns nil when the error is not a recognized constraint.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch {
	case pgErr.Code == "23P01" && pgErr.ConstraintName == "interview_slots_no_overlap":
		return store.ErrOverlap
	case pgErr.Code == "23505" && pgErr.ConstraintName == "interview_slots_owner_active_booking":
		return store.ErrOwnerBooked
	case pgErr.Code == "23505":
		return store.ErrDuplicateSlot
	}
	return nil
}

package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talenthub/backend/internal/domain"
	"talenthub/backend/internal/service/scheduling"
	"talenthub/backend/internal/store"
)

type SlotsServer struct {
	svc schedulingService
	log *slog.Logger
}

type schedulingService interface {
	Book(ctx context.Context, startTime time.Time, durationMinutes int, ownerRef string) (domain.InterviewSlot, error)
	CreateSlot(ctx context.Context, startTime time.Time, durationMinutes int, ownerRef string) (domain.InterviewSlot, error)
	Release(ctx context.Context, slotID uuid.UUID) (domain.InterviewSlot, error)
	Suggestions(ctx context.Context, day time.Time, durationMinutes int) (scheduling.DaySuggestions, error)
}

func NewSlotsServer(svc schedulingService, log *slog.Logger) *SlotsServer {
	if log == nil {
		log = slog.Default()
	}
	return &SlotsServer{
		svc: svc,
		log: log.With(slog.String("component", "http.slots")),
	}
}

func (s *SlotsServer) Register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := r.Group("/v1")
	v1.GET("/interview-slots/suggestions", s.Suggestions)
	v1.POST("/interview-slots/book", s.Book)
	v1.POST("/interview-slots", s.CreateSlot)
	v1.POST("/interview-slots/:id/release", s.Release)
	v1.POST("/weekly-hours/validate", s.ValidateWeeklyHours)
}

type slotResponse struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	OwnerRef        string    `json:"owner_ref,omitempty"`
}

func toSlotResponse(s domain.InterviewSlot) slotResponse {
	return slotResponse{
		ID:              s.ID.String(),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationMinutes: s.DurationMinutes(),
		Status:          string(s.Status),
		OwnerRef:        s.OwnerRef,
	}
}

// POST /v1/interview-slots/book
func (s *SlotsServer) Book(c *gin.Context) {
	log := s.log.With(slog.String("handler", "Book"))

	var in struct {
		StartTime       time.Time `json:"start_time" binding:"required"` // RFC3339
		DurationMinutes int       `json:"duration_minutes" binding:"required"`
		OwnerRef        string    `json:"owner_ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := s.svc.Book(c.Request.Context(), in.StartTime, in.DurationMinutes, in.OwnerRef)
	if err != nil {
		s.renderError(c, log, err, slog.String("owner_ref", in.OwnerRef))
		return
	}

	log.Info(
		"slot booked",
		slog.String("slot_id", slot.ID.String()),
		slog.String("owner_ref", slot.OwnerRef),
		slog.Time("start_time", slot.StartTime),
		slog.Time("end_time", slot.EndTime),
	)
	c.JSON(http.StatusCreated, toSlotResponse(slot))
}

// POST /v1/interview-slots
func (s *SlotsServer) CreateSlot(c *gin.Context) {
	log := s.log.With(slog.String("handler", "CreateSlot"))

	var in struct {
		StartTime       time.Time `json:"start_time" binding:"required"`
		DurationMinutes int       `json:"duration_minutes" binding:"required"`
		OwnerRef        string    `json:"owner_ref"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := s.svc.CreateSlot(c.Request.Context(), in.StartTime, in.DurationMinutes, in.OwnerRef)
	if err != nil {
		s.renderError(c, log, err)
		return
	}

	log.Info(
		"slot created",
		slog.String("slot_id", slot.ID.String()),
		slog.String("status", string(slot.Status)),
		slog.Time("start_time", slot.StartTime),
	)
	c.JSON(http.StatusCreated, toSlotResponse(slot))
}

// POST /v1/interview-slots/:id/release
func (s *SlotsServer) Release(c *gin.Context) {
	log := s.log.With(slog.String("handler", "Release"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot id must be a UUID"})
		return
	}

	slot, err := s.svc.Release(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, log, err, slog.String("slot_id", id.String()))
		return
	}

	log.Info("slot released", slog.String("slot_id", slot.ID.String()))
	c.JSON(http.StatusOK, toSlotResponse(slot))
}

// GET /v1/interview-slots/suggestions?day=2024-03-01&duration_minutes=30
func (s *SlotsServer) Suggestions(c *gin.Context) {
	log := s.log.With(slog.String("handler", "Suggestions"))

	day, err := time.Parse("2006-01-02", c.Query("day"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_day"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
		return
	}
	duration, err := strconv.Atoi(c.Query("duration_minutes"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_duration"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_minutes must be an integer"})
		return
	}

	res, err := s.svc.Suggestions(c.Request.Context(), day, duration)
	if err != nil {
		s.renderError(c, log, err)
		return
	}

	suggestions := make([]gin.H, 0, len(res.Suggestions))
	for _, sc := range res.Suggestions {
		item := gin.H{
			"start_time": sc.StartTime,
			"end_time":   sc.EndTime,
			"available":  sc.Available,
		}
		if sc.Reason != "" {
			item["conflict_reason"] = string(sc.Reason)
		}
		suggestions = append(suggestions, item)
	}
	existing := make([]slotResponse, 0, len(res.ExistingSlots))
	for _, slot := range res.ExistingSlots {
		existing = append(existing, toSlotResponse(slot))
	}

	log.Debug(
		"suggestions listed",
		slog.Time("day", day),
		slog.Int("count", len(suggestions)),
		slog.Int("existing", len(existing)),
	)
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "existing_slots": existing})
}

// POST /v1/weekly-hours/validate
func (s *SlotsServer) ValidateWeeklyHours(c *gin.Context) {
	log := s.log.With(slog.String("handler", "ValidateWeeklyHours"))

	var in struct {
		Slots []struct {
			StartMinute int `json:"start_minute"`
			EndMinute   int `json:"end_minute"`
		} `json:"slots" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	declared := make([]domain.DeclaredSlot, 0, len(in.Slots))
	for _, ds := range in.Slots {
		declared = append(declared, domain.DeclaredSlot{Start: ds.StartMinute, End: ds.EndMinute})
	}

	checks := domain.ValidateDeclaredHours(declared)
	out := make([]gin.H, 0, len(checks))
	for _, ck := range checks {
		item := gin.H{"index": ck.Index, "valid": ck.Valid}
		if ck.Reason != "" {
			item["reason"] = string(ck.Reason)
		}
		out = append(out, item)
	}

	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (s *SlotsServer) renderError(c *gin.Context, log *slog.Logger, err error, attrs ...any) {
	var vErr *scheduling.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, scheduling.ErrAlreadyBooked):
		log.Info("booking rejected", append([]any{slog.String("reason", "owner_booked")}, attrs...)...)
		c.JSON(http.StatusConflict, gin.H{"error": "You already have an interview booked."})
	case errors.Is(err, scheduling.ErrSlotConflict):
		log.Info("booking rejected", append([]any{slog.String("reason", "slot_conflict")}, attrs...)...)
		c.JSON(http.StatusConflict, gin.H{"error": "That time is no longer available. Pick a different slot."})
	case errors.Is(err, store.ErrNotFound):
		log.Info("slot not found", attrs...)
		c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
	default:
		log.Error("request failed", append([]any{slog.Any("err", err)}, attrs...)...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ajuteixeira/book-sala/internal/booking"
	"github.com/ajuteixeira/book-sala/internal/dto"
	"github.com/ajuteixeira/book-sala/internal/model"
	"github.com/ajuteixeira/book-sala/internal/repository"
)

// ── reservation business errors ──

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrReservationNotActive = errors.New("reservation is not active")
	ErrForbidden            = errors.New("not allowed to modify this reservation")
	ErrTimeConflict         = errors.New("conflicting reservation exists for this room and time")
	ErrQuotaExceeded        = errors.New("active reservation limit reached")
	ErrDailyLimitActive     = errors.New("user already has an active reservation on this date")
	ErrDailyLimitCompleted  = errors.New("user already had a reservation on this date")
	ErrCapacityExceeded     = errors.New("room capacity is smaller than the requested quantity")
)

const (
	// ActiveReservationQuota caps concurrent active reservations for
	// non-admin users.
	ActiveReservationQuota = 3
	// HistoryPageSize is the page size of the reservation history.
	HistoryPageSize = 3
	// DefaultReason is applied when a reservation carries no reason.
	DefaultReason = "Outro"
)

// ReservationService is the reservation business interface.
type ReservationService interface {
	// List returns active, not yet expired reservations: the caller's
	// own, or everyone's for admins.
	List(ctx context.Context, callerID string, isAdmin bool) ([]dto.ReservationResponse, error)
	// History pages completed and cancelled reservations.
	History(ctx context.Context, callerID string, isAdmin bool, page int) ([]dto.ReservationResponse, int64, error)
	Create(ctx context.Context, callerID string, isAdmin bool, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)
	Update(ctx context.Context, id, callerID string, isAdmin bool, req *dto.UpdateReservationRequest) (*dto.ReservationResponse, error)
	Cancel(ctx context.Context, id, callerID string, isAdmin bool) error
	// CompletePast flips aged-out active reservations to completed and
	// returns how many rows changed. Backs both the scheduled sweep and
	// the manual endpoint.
	CompletePast(ctx context.Context) (int64, error)
}

type reservationService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewReservationService creates the ReservationService.
func NewReservationService(repo *repository.Repository, logger *zap.Logger) ReservationService {
	return &reservationService{repo: repo, logger: logger, now: time.Now}
}

func (s *reservationService) clock() (today, nowClock string, now time.Time) {
	now = s.now()
	return booking.Today(now).Format(booking.DateLayout),
		booking.FormatClock(now.Hour()*60 + now.Minute()),
		now
}

// ────────────────────── List / History ──────────────────────

func (s *reservationService) List(ctx context.Context, callerID string, isAdmin bool) ([]dto.ReservationResponse, error) {
	userID := callerID
	if isAdmin {
		userID = ""
	}
	today, nowClock, _ := s.clock()

	list, err := s.repo.Reservation.ListActive(ctx, userID, today, nowClock)
	if err != nil {
		s.logger.Error("listing reservations failed", zap.Error(err))
		return nil, err
	}
	return toReservationResponses(list), nil
}

func (s *reservationService) History(ctx context.Context, callerID string, isAdmin bool, page int) ([]dto.ReservationResponse, int64, error) {
	userID := callerID
	if isAdmin {
		userID = ""
	}
	if page <= 0 {
		page = 1
	}
	today, nowClock, _ := s.clock()

	list, total, err := s.repo.Reservation.ListHistory(ctx, userID, today, nowClock, (page-1)*HistoryPageSize, HistoryPageSize)
	if err != nil {
		s.logger.Error("listing reservation history failed", zap.Error(err))
		return nil, 0, err
	}

	// a row the sweep has not reached yet still reads as completed
	for i := range list {
		if list[i].Status == model.StatusActive {
			list[i].Status = model.StatusCompleted
		}
	}
	return toReservationResponses(list), total, nil
}

// ────────────────────── Create ──────────────────────

func (s *reservationService) Create(ctx context.Context, callerID string, isAdmin bool, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	now := s.now()

	window, err := booking.ValidateWindow(req.Date, req.StartTime, req.EndTime, now)
	if err != nil {
		return nil, err
	}
	if err := booking.ValidateHorizon(window, now); err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	reason := req.Reason
	if reason == "" {
		reason = DefaultReason
	}

	res := &model.Reservation{
		UserID:    callerID,
		RoomID:    req.RoomID,
		Date:      window.Date.Format(booking.DateLayout),
		StartTime: booking.FormatClock(window.Start),
		EndTime:   booking.FormatClock(window.End),
		Quantity:  quantity,
		Reason:    reason,
		Title:     req.Title,
		Notes:     req.Notes,
		Status:    model.StatusActive,
	}

	// the room row is locked for the whole check-then-insert so two
	// concurrent requests for the same room serialize instead of both
	// reading "no conflict"
	err = s.repo.Transaction(func(tx *repository.Repository) error {
		room, err := tx.Room.GetByIDForUpdate(ctx, req.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			s.logger.Error("locking room failed", zap.Error(err))
			return err
		}

		if room.Capacity < quantity {
			return ErrCapacityExceeded
		}

		if !isAdmin {
			if err := s.checkUserEligibility(ctx, tx, callerID, res.Date, ""); err != nil {
				return err
			}
		}

		if err := s.checkConflicts(ctx, tx, req.RoomID, res.Date, window, ""); err != nil {
			return err
		}

		return tx.Reservation.Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Reservation.GetByID(ctx, res.ReservationID)
	if err != nil {
		s.logger.Error("reloading reservation failed", zap.Error(err))
		return nil, err
	}
	return toReservationResponse(created), nil
}

// ────────────────────── Update ──────────────────────

func (s *reservationService) Update(ctx context.Context, id, callerID string, isAdmin bool, req *dto.UpdateReservationRequest) (*dto.ReservationResponse, error) {
	res, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("looking up reservation failed", zap.Error(err))
		return nil, err
	}

	if !isAdmin && res.UserID != callerID {
		return nil, ErrForbidden
	}
	if res.Status != model.StatusActive {
		return nil, ErrReservationNotActive
	}

	if req.RoomID != nil {
		res.RoomID = *req.RoomID
	}
	if req.Date != nil {
		res.Date = *req.Date
	}
	if req.StartTime != nil {
		res.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		res.EndTime = *req.EndTime
	}
	if req.Quantity != nil {
		res.Quantity = *req.Quantity
	}
	if req.Reason != nil {
		res.Reason = *req.Reason
	}
	if req.Title != nil {
		res.Title = *req.Title
	}
	if req.Notes != nil {
		res.Notes = *req.Notes
	}

	now := s.now()
	window, err := booking.ValidateWindow(res.Date, res.StartTime, res.EndTime, now)
	if err != nil {
		return nil, err
	}
	if err := booking.ValidateHorizon(window, now); err != nil {
		return nil, err
	}
	res.Date = window.Date.Format(booking.DateLayout)

	err = s.repo.Transaction(func(tx *repository.Repository) error {
		room, err := tx.Room.GetByIDForUpdate(ctx, res.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			s.logger.Error("locking room failed", zap.Error(err))
			return err
		}

		if room.Capacity < res.Quantity {
			return ErrCapacityExceeded
		}

		// exclude the reservation's own row from both checks
		if !isAdmin {
			if err := s.checkUserEligibilityForEdit(ctx, tx, res.UserID, res.Date, res.ReservationID); err != nil {
				return err
			}
		}
		if err := s.checkConflicts(ctx, tx, res.RoomID, res.Date, window, res.ReservationID); err != nil {
			return err
		}

		return tx.Reservation.Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Reservation.GetByID(ctx, res.ReservationID)
	if err != nil {
		s.logger.Error("reloading reservation failed", zap.Error(err))
		return nil, err
	}
	return toReservationResponse(updated), nil
}

// ────────────────────── Cancel ──────────────────────

func (s *reservationService) Cancel(ctx context.Context, id, callerID string, isAdmin bool) error {
	res, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		s.logger.Error("looking up reservation failed", zap.Error(err))
		return err
	}

	if !isAdmin && res.UserID != callerID {
		return ErrForbidden
	}
	if res.Status != model.StatusActive {
		return ErrReservationNotActive
	}

	res.Status = model.StatusCancelled
	if err := s.repo.Reservation.Update(ctx, res); err != nil {
		s.logger.Error("cancelling reservation failed", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── CompletePast ──────────────────────

func (s *reservationService) CompletePast(ctx context.Context) (int64, error) {
	today, nowClock, _ := s.clock()

	n, err := s.repo.Reservation.CompleteExpired(ctx, today, nowClock)
	if err != nil {
		s.logger.Error("completion sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("reservations completed", zap.Int64("count", n))
	}
	return n, nil
}

// ────────────────────── shared checks ──────────────────────

// checkUserEligibility enforces the per-user caps on creation: one
// reservation per calendar day and at most three concurrently active.
func (s *reservationService) checkUserEligibility(ctx context.Context, tx *repository.Repository, userID, date, excludeID string) error {
	sameDay, err := tx.Reservation.FindByUserAndDate(ctx, userID, date, excludeID)
	if err != nil {
		s.logger.Error("daily uniqueness check failed", zap.Error(err))
		return err
	}
	for i := range sameDay {
		if sameDay[i].Status == model.StatusActive {
			return ErrDailyLimitActive
		}
	}
	if len(sameDay) > 0 {
		return ErrDailyLimitCompleted
	}

	count, err := tx.Reservation.CountActiveByUser(ctx, userID)
	if err != nil {
		s.logger.Error("quota check failed", zap.Error(err))
		return err
	}
	if count >= ActiveReservationQuota {
		return ErrQuotaExceeded
	}
	return nil
}

// checkUserEligibilityForEdit is the daily-uniqueness recheck on edits;
// moving an existing reservation never trips the concurrent quota.
func (s *reservationService) checkUserEligibilityForEdit(ctx context.Context, tx *repository.Repository, userID, date, excludeID string) error {
	sameDay, err := tx.Reservation.FindByUserAndDate(ctx, userID, date, excludeID)
	if err != nil {
		s.logger.Error("daily uniqueness check failed", zap.Error(err))
		return err
	}
	for i := range sameDay {
		if sameDay[i].Status == model.StatusActive {
			return ErrDailyLimitActive
		}
	}
	if len(sameDay) > 0 {
		return ErrDailyLimitCompleted
	}
	return nil
}

// checkConflicts scans active reservations for the room and date and
// rejects overlapping half-open intervals.
func (s *reservationService) checkConflicts(ctx context.Context, tx *repository.Repository, roomID, date string, window booking.Window, excludeID string) error {
	existing, err := tx.Reservation.ListActiveByRoomAndDate(ctx, roomID, date, excludeID)
	if err != nil {
		s.logger.Error("conflict check failed", zap.Error(err))
		return err
	}
	for i := range existing {
		rs, err1 := booking.ParseClock(existing[i].StartTime)
		re, err2 := booking.ParseClock(existing[i].EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if booking.Overlaps(window.Start, window.End, rs, re) {
			return ErrTimeConflict
		}
	}
	return nil
}

// ────────────────────── responses ──────────────────────

func toReservationResponse(res *model.Reservation) *dto.ReservationResponse {
	resp := &dto.ReservationResponse{
		ID:        res.ReservationID,
		Date:      res.Date,
		StartTime: res.StartTime,
		EndTime:   res.EndTime,
		Quantity:  res.Quantity,
		Reason:    res.Reason,
		Title:     res.Title,
		Notes:     res.Notes,
		Status:    res.Status,
		CreatedAt: res.CreatedAt.Format(time.RFC3339),
		UpdatedAt: res.UpdatedAt.Format(time.RFC3339),
	}
	if res.Room != nil {
		resp.Room = &dto.RoomBrief{
			ID:       res.Room.RoomID,
			Name:     res.Room.Name,
			Capacity: res.Room.Capacity,
		}
	}
	if res.User != nil {
		u := toUserResponse(res.User)
		resp.User = &u
	}
	return resp
}

func toReservationResponses(list []model.Reservation) []dto.ReservationResponse {
	result := make([]dto.ReservationResponse, 0, len(list))
	for i := range list {
		result = append(result, *toReservationResponse(&list[i]))
	}
	return result
}

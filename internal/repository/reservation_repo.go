package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ajuteixeira/book-sala/internal/model"
	pkgerrors "github.com/ajuteixeira/book-sala/pkg/errors"
)

// ReservationRepository is the reservation data-access interface.
// Date parameters are "YYYY-MM-DD"; clock parameters are "HH:MM", which
// compare correctly as strings.
type ReservationRepository interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	Update(ctx context.Context, res *model.Reservation) error

	// ListActive returns reservations that are active and not yet past
	// their window, ordered by date then start time. Empty userID means
	// all users.
	ListActive(ctx context.Context, userID, today, nowClock string) ([]model.Reservation, error)
	// ListHistory pages reservations whose effective status is completed
	// or cancelled, newest first. Empty userID means all users.
	ListHistory(ctx context.Context, userID, today, nowClock string, offset, limit int) ([]model.Reservation, int64, error)
	// ListActiveByRoomAndDate returns the active reservations considered
	// by conflict detection, optionally excluding one reservation.
	ListActiveByRoomAndDate(ctx context.Context, roomID, date, excludeID string) ([]model.Reservation, error)
	// ListActiveByDate returns all active reservations on a date across
	// rooms, for the availability query.
	ListActiveByDate(ctx context.Context, date string) ([]model.Reservation, error)
	// CountActiveByUser counts a user's active reservations (quota).
	CountActiveByUser(ctx context.Context, userID string) (int64, error)
	// FindByUserAndDate returns a user's non-cancelled reservations on a
	// date, optionally excluding one reservation (daily uniqueness).
	FindByUserAndDate(ctx context.Context, userID, date, excludeID string) ([]model.Reservation, error)
	// CompleteExpired flips every aged-out active reservation to
	// completed and reports how many rows changed.
	CompleteExpired(ctx context.Context, today, nowClock string) (int64, error)
	// ListAll returns every reservation with associations, for export.
	ListAll(ctx context.Context) ([]model.Reservation, error)
}

type reservationRepo struct {
	db *gorm.DB
}

// NewReservationRepo creates the GORM-backed ReservationRepository.
func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *reservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	var res model.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Where("reservation_id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	oldVersion := res.Version
	result := r.db.WithContext(ctx).
		Model(res).
		Where("reservation_id = ? AND version = ?", res.ReservationID, oldVersion).
		Updates(map[string]interface{}{
			"room_id":    res.RoomID,
			"date":       res.Date,
			"start_time": res.StartTime,
			"end_time":   res.EndTime,
			"quantity":   res.Quantity,
			"reason":     res.Reason,
			"title":      res.Title,
			"notes":      res.Notes,
			"status":     res.Status,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	res.Version = oldVersion + 1
	return nil
}

func (r *reservationRepo) ListActive(ctx context.Context, userID, today, nowClock string) ([]model.Reservation, error) {
	var list []model.Reservation
	q := r.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Where("status = ?", model.StatusActive).
		Where("(date > ? OR (date = ? AND end_time > ?))", today, today, nowClock)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Order("date ASC, start_time ASC").Find(&list).Error
	return list, err
}

func (r *reservationRepo) ListHistory(ctx context.Context, userID, today, nowClock string, offset, limit int) ([]model.Reservation, int64, error) {
	var list []model.Reservation
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("(status IN ? OR (status = ? AND (date < ? OR (date = ? AND end_time <= ?))))",
			[]string{model.StatusCompleted, model.StatusCancelled},
			model.StatusActive, today, today, nowClock)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Room").
		Preload("User").
		Offset(offset).Limit(limit).
		Order("date DESC, start_time DESC").
		Find(&list).Error
	return list, total, err
}

func (r *reservationRepo) ListActiveByRoomAndDate(ctx context.Context, roomID, date, excludeID string) ([]model.Reservation, error) {
	var list []model.Reservation
	q := r.db.WithContext(ctx).
		Where("room_id = ? AND date = ? AND status = ?", roomID, date, model.StatusActive)
	if excludeID != "" {
		q = q.Where("reservation_id != ?", excludeID)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *reservationRepo) ListActiveByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	var list []model.Reservation
	err := r.db.WithContext(ctx).
		Where("date = ? AND status = ?", date, model.StatusActive).
		Find(&list).Error
	return list, err
}

func (r *reservationRepo) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("user_id = ? AND status = ?", userID, model.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *reservationRepo) FindByUserAndDate(ctx context.Context, userID, date, excludeID string) ([]model.Reservation, error) {
	var list []model.Reservation
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND status IN ?",
			userID, date, []string{model.StatusActive, model.StatusCompleted})
	if excludeID != "" {
		q = q.Where("reservation_id != ?", excludeID)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *reservationRepo) CompleteExpired(ctx context.Context, today, nowClock string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("status = ?", model.StatusActive).
		Where("(date < ? OR (date = ? AND end_time <= ?))", today, today, nowClock).
		Updates(map[string]interface{}{"status": model.StatusCompleted})
	return result.RowsAffected, result.Error
}

func (r *reservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	var list []model.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Order("date ASC, start_time ASC").
		Find(&list).Error
	return list, err
}

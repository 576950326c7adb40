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

// ── room business errors ──

var (
	ErrRoomNotFound = errors.New("room not found")
)

// RoomService is the room business interface.
type RoomService interface {
	Create(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RoomResponse, error)
	List(ctx context.Context) ([]dto.RoomResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error)
	Delete(ctx context.Context, id string) error
	// Available computes the bookable room set for a slot, after checking
	// the caller's own eligibility for that day.
	Available(ctx context.Context, callerID string, isAdmin bool, req *dto.AvailabilityRequest) ([]dto.RoomResponse, error)
}

type roomService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewRoomService creates the RoomService.
func NewRoomService(repo *repository.Repository, logger *zap.Logger) RoomService {
	return &roomService{repo: repo, logger: logger, now: time.Now}
}

func (s *roomService) Create(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	room := &model.Room{
		Name:        req.Name,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	if err := s.repo.Room.Create(ctx, room); err != nil {
		s.logger.Error("creating room failed", zap.Error(err))
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*dto.RoomResponse, error) {
	room, err := s.repo.Room.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("looking up room failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *roomService) List(ctx context.Context) ([]dto.RoomResponse, error) {
	rooms, err := s.repo.Room.List(ctx)
	if err != nil {
		s.logger.Error("listing rooms failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		result = append(result, *toRoomResponse(&rooms[i]))
	}
	return result, nil
}

func (s *roomService) Update(ctx context.Context, id string, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error) {
	room, err := s.repo.Room.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("looking up room failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Description != nil {
		room.Description = *req.Description
	}

	if err := s.repo.Room.Update(ctx, room); err != nil {
		s.logger.Error("updating room failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Room.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		s.logger.Error("looking up room failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return s.repo.Room.Delete(ctx, id)
}

func (s *roomService) Available(ctx context.Context, callerID string, isAdmin bool, req *dto.AvailabilityRequest) ([]dto.RoomResponse, error) {
	now := s.now()

	window, err := booking.ValidateWindow(req.Date, req.StartTime, req.EndTime, now)
	if err != nil {
		return nil, err
	}
	if err := booking.ValidateHorizon(window, now); err != nil {
		return nil, err
	}

	// the caller's own eligibility first, with distinct messages for an
	// active versus an already completed booking that day
	if !isAdmin {
		sameDay, err := s.repo.Reservation.FindByUserAndDate(ctx, callerID, req.Date, "")
		if err != nil {
			s.logger.Error("daily uniqueness check failed", zap.Error(err))
			return nil, err
		}
		for i := range sameDay {
			if sameDay[i].Status == model.StatusActive {
				return nil, ErrDailyLimitActive
			}
		}
		if len(sameDay) > 0 {
			return nil, ErrDailyLimitCompleted
		}

		count, err := s.repo.Reservation.CountActiveByUser(ctx, callerID)
		if err != nil {
			s.logger.Error("quota check failed", zap.Error(err))
			return nil, err
		}
		if count >= ActiveReservationQuota {
			return nil, ErrQuotaExceeded
		}
	}

	existing, err := s.repo.Reservation.ListActiveByDate(ctx, req.Date)
	if err != nil {
		s.logger.Error("listing reservations failed", zap.Error(err))
		return nil, err
	}

	occupied := make(map[string]bool)
	for i := range existing {
		r := &existing[i]
		rs, err1 := booking.ParseClock(r.StartTime)
		re, err2 := booking.ParseClock(r.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if booking.Overlaps(window.Start, window.End, rs, re) {
			occupied[r.RoomID] = true
		}
	}

	rooms, err := s.repo.Room.List(ctx)
	if err != nil {
		s.logger.Error("listing rooms failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		room := &rooms[i]
		if occupied[room.RoomID] {
			continue
		}
		if req.Quantity > 0 && room.Capacity < req.Quantity {
			continue
		}
		result = append(result, *toRoomResponse(room))
	}
	return result, nil
}

func toRoomResponse(room *model.Room) *dto.RoomResponse {
	return &dto.RoomResponse{
		ID:          room.RoomID,
		Name:        room.Name,
		Capacity:    room.Capacity,
		Description: room.Description,
		CreatedAt:   room.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   room.UpdatedAt.Format(time.RFC3339),
	}
}

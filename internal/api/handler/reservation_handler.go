package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajuteixeira/book-sala/internal/booking"
	"github.com/ajuteixeira/book-sala/internal/dto"
	"github.com/ajuteixeira/book-sala/internal/service"
	pkgerrors "github.com/ajuteixeira/book-sala/pkg/errors"
	"github.com/ajuteixeira/book-sala/pkg/response"
)

// ReservationHandler is the reservation HTTP handler.
type ReservationHandler struct {
	reservationSvc service.ReservationService
}

// NewReservationHandler creates the ReservationHandler.
func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

// List returns the caller's active reservations, or everyone's for admins.
// GET /api/v1/reservations
func (h *ReservationHandler) List(c *gin.Context) {
	userID, isAdmin, ok := callerIdentity(c)
	if !ok {
		return
	}

	list, err := h.reservationSvc.List(c.Request.Context(), userID, isAdmin)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// History pages completed and cancelled reservations.
// GET /api/v1/reservations/history?page=1
func (h *ReservationHandler) History(c *gin.Context) {
	userID, isAdmin, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "invalid page")
		return
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	list, total, err := h.reservationSvc.History(c.Request.Context(), userID, isAdmin, page)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, page, service.HistoryPageSize)
}

// Create books a room.
// POST /api/v1/reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	userID, isAdmin, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "invalid request body")
		return
	}

	result, err := h.reservationSvc.Create(c.Request.Context(), userID, isAdmin, &req)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}
	response.Created(c, result)
}

// Update edits an active reservation.
// PUT /api/v1/reservations/:id
func (h *ReservationHandler) Update(c *gin.Context) {
	userID, isAdmin, ok := callerIdentity(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "reservation id required")
		return
	}

	var req dto.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "invalid request body")
		return
	}

	result, err := h.reservationSvc.Update(c.Request.Context(), id, userID, isAdmin, &req)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}
	response.OK(c, result)
}

// Cancel cancels an active reservation.
// DELETE /api/v1/reservations/:id
func (h *ReservationHandler) Cancel(c *gin.Context) {
	userID, isAdmin, ok := callerIdentity(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "reservation id required")
		return
	}

	if err := h.reservationSvc.Cancel(c.Request.Context(), id, userID, isAdmin); err != nil {
		h.handleReservationError(c, err)
		return
	}
	response.OK(c, nil)
}

// CompletePast flips aged-out reservations to completed (admin only).
// POST /api/v1/reservations/complete-past
func (h *ReservationHandler) CompletePast(c *gin.Context) {
	n, err := h.reservationSvc.CompletePast(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, dto.SweepResponse{Completed: n})
}

func (h *ReservationHandler) handleReservationError(c *gin.Context, err error) {
	if handleBookingError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrReservationNotFound):
		response.NotFound(c, 13013, "reservation not found")
	case errors.Is(err, service.ErrReservationNotActive):
		response.Error(c, http.StatusConflict, 13013, "reservation is not active")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "not your reservation")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 12001, "room not found")
	case errors.Is(err, service.ErrTimeConflict):
		response.Error(c, http.StatusConflict, 13008, "room already reserved for this time")
	case errors.Is(err, service.ErrQuotaExceeded):
		response.Error(c, http.StatusConflict, 13009, "active reservation limit reached")
	case errors.Is(err, service.ErrDailyLimitActive):
		response.Error(c, http.StatusConflict, 13010, "you already have an active reservation on this day")
	case errors.Is(err, service.ErrDailyLimitCompleted):
		response.Error(c, http.StatusConflict, 13010, "you already completed a reservation on this day")
	case errors.Is(err, service.ErrCapacityExceeded):
		response.Error(c, http.StatusUnprocessableEntity, 13014, "quantity exceeds room capacity")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Error(c, http.StatusConflict, 13015, "reservation changed concurrently, retry")
	default:
		response.InternalError(c)
	}
}

// handleBookingError maps time-rule violations to their envelope codes.
// Returns false when err is not a booking rule error.
func handleBookingError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, booking.ErrInvalidDate):
		response.BadRequest(c, 13002, "date must be YYYY-MM-DD")
	case errors.Is(err, booking.ErrInvalidTime):
		response.BadRequest(c, 13002, "times must be HH:MM")
	case errors.Is(err, booking.ErrInvalidGranularity):
		response.BadRequest(c, 13003, "times must fall on 15 minute marks")
	case errors.Is(err, booking.ErrInvalidRange):
		response.BadRequest(c, 13004, "start_time must be before end_time")
	case errors.Is(err, booking.ErrTooShort):
		response.BadRequest(c, 13005, "reservation must last at least 15 minutes")
	case errors.Is(err, booking.ErrClosed):
		response.Error(c, http.StatusUnprocessableEntity, 13006, "library is closed on this day")
	case errors.Is(err, booking.ErrOutsideHours):
		response.Error(c, http.StatusUnprocessableEntity, 13007, "slot is outside opening hours")
	case errors.Is(err, booking.ErrPastDate):
		response.Error(c, http.StatusUnprocessableEntity, 13012, "date is in the past")
	case errors.Is(err, booking.ErrPastTime):
		response.Error(c, http.StatusUnprocessableEntity, 13012, "slot has already started")
	case errors.Is(err, booking.ErrTooFarAhead):
		response.Error(c, http.StatusUnprocessableEntity, 13011, "date is beyond the 30 day booking horizon")
	default:
		return false
	}
	return true
}

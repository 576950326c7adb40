package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajuteixeira/book-sala/internal/dto"
	"github.com/ajuteixeira/book-sala/internal/service"
	"github.com/ajuteixeira/book-sala/pkg/response"
)

// RoomHandler is the room HTTP handler.
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler creates the RoomHandler.
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// List returns all rooms.
// GET /api/v1/rooms
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.roomSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": rooms})
}

// Get returns one room.
// GET /api/v1/rooms/:id
func (h *RoomHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "room id required")
		return
	}

	room, err := h.roomSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.OK(c, room)
}

// Available returns rooms free for a slot, checking the caller's own
// eligibility for the day first.
// GET /api/v1/rooms/available?date=&start_time=&end_time=&quantity=
func (h *RoomHandler) Available(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "date, start_time and end_time are required")
		return
	}

	userID, isAdmin, ok := callerIdentity(c)
	if !ok {
		return
	}

	rooms, err := h.roomSvc.Available(c.Request.Context(), userID, isAdmin, &req)
	if err != nil {
		if handleBookingError(c, err) {
			return
		}
		h.handleRoomError(c, err)
		return
	}
	response.OK(c, gin.H{"list": rooms})
}

// Create creates a room (admin only).
// POST /api/v1/rooms
func (h *RoomHandler) Create(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	room, err := h.roomSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.Created(c, room)
}

// Update edits a room (admin only).
// PUT /api/v1/rooms/:id
func (h *RoomHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "room id required")
		return
	}

	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	room, err := h.roomSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.OK(c, room)
}

// Delete removes a room (admin only).
// DELETE /api/v1/rooms/:id
func (h *RoomHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "room id required")
		return
	}

	if err := h.roomSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleRoomError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *RoomHandler) handleRoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 12001, "room not found")
	case errors.Is(err, service.ErrDailyLimitActive):
		response.Error(c, http.StatusConflict, 13010, "you already have an active reservation on this day")
	case errors.Is(err, service.ErrDailyLimitCompleted):
		response.Error(c, http.StatusConflict, 13010, "you already completed a reservation on this day")
	case errors.Is(err, service.ErrQuotaExceeded):
		response.Error(c, http.StatusConflict, 13009, "active reservation limit reached")
	default:
		response.InternalError(c)
	}
}

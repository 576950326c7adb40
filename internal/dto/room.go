package dto

// ── room requests ──

// CreateRoomRequest creates a room (admin only).
type CreateRoomRequest struct {
	Name        string `json:"name"        binding:"required,min=1,max=100"`
	Capacity    int    `json:"capacity"    binding:"required,min=1"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateRoomRequest edits a room (admin only).
type UpdateRoomRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=100"`
	Capacity    *int    `json:"capacity"    binding:"omitempty,min=1"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// AvailabilityRequest queries the bookable room set for a slot.
type AvailabilityRequest struct {
	Date      string `form:"date"       binding:"required"`
	StartTime string `form:"start_time" binding:"required"`
	EndTime   string `form:"end_time"   binding:"required"`
	Quantity  int    `form:"quantity"   binding:"omitempty,min=1"`
}

// ── room responses ──

// RoomResponse is the public view of a room.
type RoomResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

package dto

// ── reservation requests ──

// CreateReservationRequest books a room for a time window.
type CreateReservationRequest struct {
	RoomID    string `json:"room_id"    binding:"required,uuid"`
	Date      string `json:"date"       binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"   binding:"required"`
	Quantity  int    `json:"quantity"   binding:"omitempty,min=1"`
	Reason    string `json:"reason"     binding:"omitempty,max=100"`
	Title     string `json:"title"      binding:"omitempty,max=200"`
	Notes     string `json:"notes"      binding:"omitempty,max=2000"`
}

// UpdateReservationRequest edits an active reservation. Omitted fields
// keep their stored values; all rules re-validate against the result.
type UpdateReservationRequest struct {
	RoomID    *string `json:"room_id"    binding:"omitempty,uuid"`
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Quantity  *int    `json:"quantity"   binding:"omitempty,min=1"`
	Reason    *string `json:"reason"     binding:"omitempty,max=100"`
	Title     *string `json:"title"      binding:"omitempty,max=200"`
	Notes     *string `json:"notes"      binding:"omitempty,max=2000"`
}

// HistoryRequest pages through completed and cancelled reservations.
type HistoryRequest struct {
	Page int `form:"page" binding:"omitempty,min=1"`
}

// ── reservation responses ──

// ReservationResponse is the public view of a reservation.
type ReservationResponse struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"`
	StartTime string        `json:"start_time"`
	EndTime   string        `json:"end_time"`
	Quantity  int           `json:"quantity"`
	Reason    string        `json:"reason"`
	Title     string        `json:"title,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	Status    string        `json:"status"`
	Room      *RoomBrief    `json:"room,omitempty"`
	User      *UserResponse `json:"user,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

// RoomBrief embeds minimal room info in reservation responses.
type RoomBrief struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// SweepResponse reports how many reservations a completion sweep
// transitioned.
type SweepResponse struct {
	Completed int64 `json:"completed"`
}

package handler

import "github.com/ajuteixeira/book-sala/internal/service"

// Handler aggregates all HTTP handlers.
type Handler struct {
	Auth        *AuthHandler
	Room        *RoomHandler
	Reservation *ReservationHandler
	Export      *ExportHandler
}

// NewHandler creates the Handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Room:        NewRoomHandler(svc.Room),
		Reservation: NewReservationHandler(svc.Reservation),
		Export:      NewExportHandler(svc.Export),
	}
}

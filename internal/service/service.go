package service

import (
	"go.uber.org/zap"

	"github.com/ajuteixeira/book-sala/config"
	"github.com/ajuteixeira/book-sala/internal/repository"
	"github.com/ajuteixeira/book-sala/pkg/jwt"
	"github.com/ajuteixeira/book-sala/pkg/redis"
)

// Service aggregates every business service.
type Service struct {
	Auth        AuthService
	Room        RoomService
	Reservation ReservationService
	Export      ExportService
}

// NewService wires the service layer over its dependencies.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Room:        NewRoomService(repo, logger),
		Reservation: NewReservationService(repo, logger),
		Export:      NewExportService(repo, logger),
	}
}

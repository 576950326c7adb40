package repository

import "gorm.io/gorm"

// Repository aggregates every data-access interface.
type Repository struct {
	db          *gorm.DB
	User        UserRepository
	Room        RoomRepository
	Reservation ReservationRepository
}

// NewRepository builds the aggregate over a database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepo(db),
		Room:        NewRoomRepo(db),
		Reservation: NewReservationRepo(db),
	}
}

// Transaction runs fn against a Repository bound to a single database
// transaction, committing on nil and rolling back on error.
func (r *Repository) Transaction(fn func(tx *Repository) error) error {
	if r.db == nil {
		// repositories assembled without a live handle (tests) run fn
		// against themselves
		return fn(r)
	}
	return r.db.Transaction(func(txDB *gorm.DB) error {
		return fn(NewRepository(txDB))
	})
}

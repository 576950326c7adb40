package model

// Reservation statuses. Completed and cancelled are terminal.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Reservation books one room for one user over one contiguous time
// window on one calendar date. Date and times are naive local values:
// date "YYYY-MM-DD", times "HH:MM" at 15-minute granularity.
type Reservation struct {
	ReservationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reservation_id"`
	UserID        string `gorm:"type:uuid;not null"                             json:"user_id"`
	RoomID        string `gorm:"type:uuid;not null"                             json:"room_id"`
	Date          string `gorm:"type:varchar(10);not null"                      json:"date"`
	StartTime     string `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime       string `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Quantity      int    `gorm:"not null;default:1"                             json:"quantity"`
	Reason        string `gorm:"type:varchar(100);not null;default:'Outro'"     json:"reason"`
	Title         string `gorm:"type:varchar(200)"                              json:"title,omitempty"`
	Notes         string `gorm:"type:text"                                      json:"notes,omitempty"`
	Status        string `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	Version       int    `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Room *Room `gorm:"foreignKey:RoomID;references:RoomID" json:"room,omitempty"`
}

// TableName sets the table name.
func (Reservation) TableName() string { return "reservations" }

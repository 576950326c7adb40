package model

// Room is a reservable study room.
type Room struct {
	RoomID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Capacity    int    `gorm:"not null;default:1"                             json:"capacity"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	BaseModel
}

// TableName sets the table name.
func (Room) TableName() string { return "rooms" }

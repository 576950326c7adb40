package model

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account identified by an institutional matricula.
// The matricula is 7 digits for regular users and 9 for admins.
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Matricula    string `gorm:"type:varchar(9);not null;uniqueIndex"           json:"matricula"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	Name         string `gorm:"type:varchar(100)"                              json:"name"`
	BaseModel
}

// TableName sets the table name.
func (User) TableName() string { return "users" }

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

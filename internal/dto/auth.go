package dto

// ── auth requests ──

// RegisterRequest creates an account. Role defaults to "user"; the
// matricula must be 7 digits for users and 9 for admins.
type RegisterRequest struct {
	Matricula string `json:"matricula" binding:"required"`
	Password  string `json:"password"  binding:"required,min=6,max=72"`
	Name      string `json:"name"      binding:"omitempty,max=100"`
	Role      string `json:"role"      binding:"omitempty,oneof=user admin"`
}

// LoginRequest authenticates by matricula and password.
type LoginRequest struct {
	Matricula string `json:"matricula" binding:"required"`
	Password  string `json:"password"  binding:"required"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ── auth responses ──

// TokenResponse carries the token pair and the authenticated user.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	User         UserResponse `json:"user"`
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	ID        string `json:"id"`
	Matricula string `json:"matricula"`
	Role      string `json:"role"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string `json:"id"`
	Matricula string `json:"matricula"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
}

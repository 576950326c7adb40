package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ajuteixeira/book-sala/config"
	"github.com/ajuteixeira/book-sala/internal/dto"
	"github.com/ajuteixeira/book-sala/internal/repository"
	"github.com/ajuteixeira/book-sala/pkg/jwt"
)

func setupAuthService() (AuthService, *mockUserRepo) {
	userRepo := newMockUserRepo()
	repo := &repository.Repository{
		User:        userRepo,
		Room:        newMockRoomRepo(),
		Reservation: newMockReservationRepo(),
	}
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret-test-secret"
	cfg.Auth.AccessTokenTTL = time.Hour
	cfg.Auth.RefreshTokenTTL = 24 * time.Hour
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())
	return svc, userRepo
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := setupAuthService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Matricula: "1234567",
		Password:  "userpass",
		Name:      "Juliana",
	})
	if err != nil {
		t.Fatalf("Register should succeed: %v", err)
	}
	if resp.Role != "user" {
		t.Errorf("expected role=user, got %s", resp.Role)
	}
	if resp.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestAuthService_Register_AdminMatricula(t *testing.T) {
	svc, _ := setupAuthService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Matricula: "123456789",
		Password:  "adminpass",
		Name:      "Ana",
		Role:      "admin",
	})
	if err != nil {
		t.Fatalf("Register should succeed: %v", err)
	}
	if resp.Role != "admin" {
		t.Errorf("expected role=admin, got %s", resp.Role)
	}
}

func TestAuthService_Register_MatriculaFormat(t *testing.T) {
	svc, _ := setupAuthService()

	tests := []struct {
		name      string
		matricula string
		role      string
		wantErr   error
	}{
		{"user too short", "123456", "user", ErrUserMatriculaFormat},
		{"user too long", "12345678", "user", ErrUserMatriculaFormat},
		{"user non-numeric", "12a4567", "user", ErrUserMatriculaFormat},
		{"user with admin length", "123456789", "user", ErrUserMatriculaFormat},
		{"admin too short", "1234567", "admin", ErrAdminMatriculaFormat},
		{"admin non-numeric", "12345678x", "admin", ErrAdminMatriculaFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &dto.RegisterRequest{
				Matricula: tt.matricula,
				Password:  "secret123",
				Role:      tt.role,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAuthService_Register_DuplicateMatricula(t *testing.T) {
	svc, _ := setupAuthService()

	req := &dto.RegisterRequest{Matricula: "1234567", Password: "userpass"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register should succeed: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrMatriculaTaken) {
		t.Errorf("expected ErrMatriculaTaken, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := setupAuthService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{Matricula: "1234567", Password: "userpass"}); err != nil {
		t.Fatal(err)
	}

	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{Matricula: "1234567", Password: "userpass"})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected a token pair")
	}
	if tokens.ExpiresIn != 3600 {
		t.Errorf("expected expires_in=3600, got %d", tokens.ExpiresIn)
	}
	if tokens.User.Matricula != "1234567" {
		t.Errorf("unexpected user in response: %+v", tokens.User)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _ := setupAuthService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{Matricula: "1234567", Password: "userpass"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		matricula string
		password  string
	}{
		{"wrong password", "1234567", "wrong"},
		{"unknown matricula", "7654321", "userpass"},
		{"malformed matricula", "abc", "userpass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &dto.LoginRequest{Matricula: tt.matricula, Password: tt.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _ := setupAuthService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{Matricula: "1234567", Password: "userpass"}); err != nil {
		t.Fatal(err)
	}
	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{Matricula: "1234567", Password: "userpass"})
	if err != nil {
		t.Fatal(err)
	}

	renewed, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh should succeed: %v", err)
	}
	if renewed.AccessToken == "" || renewed.RefreshToken == "" {
		t.Error("expected a renewed token pair")
	}

	// access tokens must not be usable as refresh tokens
	if _, err := svc.Refresh(context.Background(), tokens.AccessToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("expected ErrRefreshTokenInvalid, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("expected ErrRefreshTokenInvalid, got %v", err)
	}
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	svc, _ := setupAuthService()

	created, err := svc.Register(context.Background(), &dto.RegisterRequest{Matricula: "1234567", Password: "userpass", Name: "Juliana"})
	if err != nil {
		t.Fatal(err)
	}

	user, err := svc.GetCurrentUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser should succeed: %v", err)
	}
	if user.Name != "Juliana" || user.Matricula != "1234567" {
		t.Errorf("unexpected user %+v", user)
	}

	if _, err := svc.GetCurrentUser(context.Background(), "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Logout_WithoutRedis(t *testing.T) {
	svc, _ := setupAuthService()

	if err := svc.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("Logout without a blacklist backend should be a no-op: %v", err)
	}
}

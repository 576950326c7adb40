package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ajuteixeira/book-sala/config"
	"github.com/ajuteixeira/book-sala/internal/dto"
	"github.com/ajuteixeira/book-sala/internal/model"
	"github.com/ajuteixeira/book-sala/internal/repository"
	"github.com/ajuteixeira/book-sala/pkg/jwt"
	"github.com/ajuteixeira/book-sala/pkg/redis"
)

// ── auth business errors ──

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserMatriculaFormat  = errors.New("matricula of user must be exactly 7 numeric digits")
	ErrAdminMatriculaFormat = errors.New("matricula of admin must be exactly 9 numeric digits")
	ErrMatriculaTaken       = errors.New("matricula already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenInvalid  = errors.New("refresh token invalid")
)

var (
	userMatricula  = regexp.MustCompile(`^\d{7}$`)
	adminMatricula = regexp.MustCompile(`^\d{9}$`)
	anyMatricula   = regexp.MustCompile(`^\d{7,9}$`)
)

// AuthService is the authentication business interface.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService creates the AuthService.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	role := model.RoleUser
	if req.Role == model.RoleAdmin {
		role = model.RoleAdmin
	}

	// matricula digit length encodes the role
	if role == model.RoleUser && !userMatricula.MatchString(req.Matricula) {
		return nil, ErrUserMatriculaFormat
	}
	if role == model.RoleAdmin && !adminMatricula.MatchString(req.Matricula) {
		return nil, ErrAdminMatriculaFormat
	}

	if _, err := s.repo.User.GetByMatricula(ctx, req.Matricula); err == nil {
		return nil, ErrMatriculaTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("looking up matricula failed", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hashing password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Matricula:    req.Matricula,
		PasswordHash: string(hash),
		Role:         role,
		Name:         req.Name,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("creating user failed", zap.Error(err))
		return nil, err
	}

	return &dto.RegisterResponse{
		ID:        user.UserID,
		Matricula: user.Matricula,
		Role:      user.Role,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if !anyMatricula.MatchString(req.Matricula) {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.User.GetByMatricula(ctx, req.Matricula)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("looking up user failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.tokenPair(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrRefreshTokenInvalid
	}

	if s.rdb != nil {
		revoked, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("blacklist check failed", zap.Error(err))
		} else if revoked {
			return nil, ErrRefreshTokenInvalid
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		s.logger.Error("looking up user failed", zap.Error(err))
		return nil, err
	}

	// rotate: the old refresh token is revoked once a new pair is issued
	if s.rdb != nil && claims.ExpiresAt != nil {
		if err := s.rdb.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.logger.Warn("revoking old refresh token failed", zap.Error(err))
		}
	}

	return s.tokenPair(user)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		return nil // blacklist unavailable, logout is client-side only
	}
	return s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("looking up user failed", zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) tokenPair(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, user.Matricula)
	if err != nil {
		s.logger.Error("generating access token failed", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, user.Matricula)
	if err != nil {
		s.logger.Error("generating refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         toUserResponse(user),
	}, nil
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.UserID,
		Matricula: user.Matricula,
		Role:      user.Role,
		Name:      user.Name,
	}
}

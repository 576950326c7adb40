package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ajuteixeira/book-sala/internal/model"
)

// UserRepository is the user data-access interface.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByMatricula(ctx context.Context, matricula string) (*model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates the GORM-backed UserRepository.
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByMatricula(ctx context.Context, matricula string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("matricula = ?", matricula).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

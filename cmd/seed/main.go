package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ajuteixeira/book-sala/config"
	"github.com/ajuteixeira/book-sala/internal/model"
	"github.com/ajuteixeira/book-sala/internal/repository"
	"github.com/ajuteixeira/book-sala/pkg/database"
	applogger "github.com/ajuteixeira/book-sala/pkg/logger"
)

// Development fixtures: two accounts and the six study rooms.
// Safe to run repeatedly; existing rows are left alone.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config failed: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("getting sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	ctx := context.Background()

	users := []struct {
		matricula, password, name, role string
	}{
		{"123456789", "adminpass", "Ana", model.RoleAdmin},
		{"1234567", "userpass", "Juliana", model.RoleUser},
	}
	for _, u := range users {
		if _, err := repo.User.GetByMatricula(ctx, u.matricula); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Fatal("looking up user failed", zap.Error(err))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal("hashing password failed", zap.Error(err))
		}
		if err := repo.User.Create(ctx, &model.User{
			Matricula:    u.matricula,
			PasswordHash: string(hash),
			Name:         u.name,
			Role:         u.role,
		}); err != nil {
			logger.Fatal("creating user failed", zap.String("matricula", u.matricula), zap.Error(err))
		}
		logger.Info("user created", zap.String("matricula", u.matricula), zap.String("role", u.role))
	}

	rooms := []struct {
		name     string
		capacity int
	}{
		{"Sala 101", 6},
		{"Sala 102", 8},
		{"Sala 201", 10},
		{"Sala 202", 2},
		{"Sala 301", 1},
		{"Sala 302", 2},
	}
	existing, err := repo.Room.List(ctx)
	if err != nil {
		logger.Fatal("listing rooms failed", zap.Error(err))
	}
	have := make(map[string]bool, len(existing))
	for i := range existing {
		have[existing[i].Name] = true
	}
	for _, r := range rooms {
		if have[r.name] {
			continue
		}
		if err := repo.Room.Create(ctx, &model.Room{Name: r.name, Capacity: r.capacity}); err != nil {
			logger.Fatal("creating room failed", zap.String("name", r.name), zap.Error(err))
		}
		logger.Info("room created", zap.String("name", r.name), zap.Int("capacity", r.capacity))
	}

	logger.Info("seed complete")
}

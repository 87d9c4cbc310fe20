package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	// EnsureAdmin creates the bootstrap admin account if no user with the
	// given email exists. Called once at startup.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	userRepo repositories.UserRepository
	tx       repositories.TxManager
}

func NewAuthService(userRepo repositories.UserRepository, tx repositories.TxManager) AuthService {
	return &authService{userRepo: userRepo, tx: tx}
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	return s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.userRepo.Create(ctx, exec, user)
	})
}

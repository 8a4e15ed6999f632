package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/domain/repository"
	pkgAuth "github.com/polkiloo/fueldelivery/internal/pkg/auth"
)

// RegisterInput carries self-registration data.
type RegisterInput struct {
	Phone    string
	Password string
	Name     string
	Role     model.Role
}

// AuthUseCase handles registration, login and token resolution.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, logger: logger, now: time.Now}
}

// Register creates a customer or driver account and returns an auth token.
func (u *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateCredentials(in.Phone, in.Password); err != nil {
		return nil, "", err
	}
	name, err := validateName(in.Name)
	if err != nil {
		return nil, "", err
	}

	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if role != model.RoleCustomer && role != model.RoleDriver {
		return nil, "", fmt.Errorf("%w: self registration is limited to customers and drivers", domainErrors.ErrValidation)
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, &model.User{
		Phone:        in.Phone,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", fmt.Errorf("%w: phone is already registered", domainErrors.ErrAlreadyExists)
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	u.logger.Info("user registered", slog.Int64("user_id", usr.ID), slog.String("role", string(usr.Role)))
	return usr, token, nil
}

// Authenticate validates credentials and returns an auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, phone, password string) (*model.User, string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, "", fmt.Errorf("%w: phone and password are required", domainErrors.ErrValidation)
	}

	usr, err := u.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if !usr.IsActive {
		return nil, "", domainErrors.ErrInactiveAccount
	}

	now := u.now()
	if err := u.users.TouchLogin(ctx, usr.ID, now); err != nil {
		return nil, "", err
	}
	usr.LastLoginAt = &now

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// ParseToken extracts user ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// Actor resolves the caller behind userID. Deleted users yield ErrInvalidToken
// and deactivated ones ErrInactiveAccount.
func (u *AuthUseCase) Actor(ctx context.Context, userID int64) (model.Actor, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.Actor{}, pkgAuth.ErrInvalidToken
		}
		return model.Actor{}, err
	}
	if !usr.IsActive {
		return model.Actor{}, domainErrors.ErrInactiveAccount
	}
	return model.Actor{ID: usr.ID, Role: usr.Role}, nil
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/domain/repository"
	pkgAuth "github.com/polkiloo/fueldelivery/internal/pkg/auth"
)

// CreateUserInput carries an account created by an admin.
type CreateUserInput struct {
	Phone    string
	Password string
	Name     string
	Role     model.Role
}

// UserUseCase implements back-office account management.
type UserUseCase struct {
	users   repository.UserRepository
	hasher  pkgAuth.PasswordHasher
	emitter *NotificationEmitter
	logger  *slog.Logger
}

// NewUserUseCase constructs UserUseCase.
func NewUserUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, emitter *NotificationEmitter, logger *slog.Logger) *UserUseCase {
	return &UserUseCase{users: users, hasher: hasher, emitter: emitter, logger: logger}
}

// Create registers an account of any role on behalf of an admin.
func (u *UserUseCase) Create(ctx context.Context, actor model.Actor, in CreateUserInput) (*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateCredentials(in.Phone, in.Password); err != nil {
		return nil, err
	}
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domainErrors.ErrValidation, role)
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	addedBy := actor.ID
	usr, err := u.users.Create(ctx, &model.User{
		Phone:        in.Phone,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		AddedBy:      &addedBy,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: phone is already registered", domainErrors.ErrAlreadyExists)
		}
		return nil, err
	}

	u.logger.Info("user created", slog.Int64("user_id", usr.ID), slog.Int64("added_by", actor.ID), slog.String("role", string(role)))
	return usr, nil
}

// List returns a page of accounts for staff.
func (u *UserUseCase) List(ctx context.Context, actor model.Actor, filter model.UserFilter, page model.Page) ([]model.User, int64, error) {
	if !actor.Role.Staff() {
		return nil, 0, fmt.Errorf("%w: only staff list users", domainErrors.ErrForbidden)
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown role %q", domainErrors.ErrValidation, *filter.Role)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return u.users.List(ctx, filter, page)
}

// Get returns an account to its owner or to staff.
func (u *UserUseCase) Get(ctx context.Context, actor model.Actor, id int64) (*model.User, error) {
	if actor.ID != id && !actor.Role.Staff() {
		return nil, fmt.Errorf("%w: cannot view another user", domainErrors.ErrForbidden)
	}
	return u.users.GetByID(ctx, id)
}

// UpdateProfile renames an account. Owners and admins only.
func (u *UserUseCase) UpdateProfile(ctx context.Context, actor model.Actor, id int64, name string) (*model.User, error) {
	if actor.ID != id && actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot update another user", domainErrors.ErrForbidden)
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	return u.users.UpdateName(ctx, id, name)
}

// ChangeRole moves an account to another role.
func (u *UserUseCase) ChangeRole(ctx context.Context, actor model.Actor, id int64, role model.Role) (*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domainErrors.ErrValidation, role)
	}
	if actor.ID == id {
		return nil, fmt.Errorf("%w: admins cannot change their own role", domainErrors.ErrForbidden)
	}

	usr, err := u.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	u.logger.Info("user role changed", slog.Int64("user_id", id), slog.String("role", string(role)), slog.Int64("by", actor.ID))
	return usr, nil
}

// SetDriverStatus activates, deactivates or suspends a driver account and
// notifies the driver.
func (u *UserUseCase) SetDriverStatus(ctx context.Context, actor model.Actor, driverID int64, action, reason string) (*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleApprovalSupervisor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)

	var active bool
	switch action {
	case DriverActionActivate:
		active = true
	case DriverActionDeactivate:
	case DriverActionSuspend:
		if reason == "" {
			return nil, fmt.Errorf("%w: suspension requires a reason", domainErrors.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown action %q", domainErrors.ErrValidation, action)
	}

	driver, err := u.users.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.Role != model.RoleDriver {
		return nil, fmt.Errorf("%w: user %d is not a driver", domainErrors.ErrValidation, driverID)
	}

	driver, err = u.users.SetActive(ctx, driverID, active)
	if err != nil {
		return nil, err
	}

	u.logger.Info("driver status changed", slog.Int64("driver_id", driverID), slog.String("action", action), slog.Int64("by", actor.ID))
	u.emitter.DriverStatusChanged(ctx, *driver, action, reason)
	return driver, nil
}

// ReviewProfile approves or rejects a profile and notifies its owner.
func (u *UserUseCase) ReviewProfile(ctx context.Context, actor model.Actor, id int64, approve bool, reason string) (*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleApprovalSupervisor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if !approve && reason == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", domainErrors.ErrValidation)
	}

	usr, err := u.users.SetVerified(ctx, id, approve)
	if err != nil {
		return nil, err
	}

	u.logger.Info("profile reviewed", slog.Int64("user_id", id), slog.Bool("approved", approve), slog.Int64("by", actor.ID))
	u.emitter.ProfileReviewed(ctx, *usr, approve, reason)
	return usr, nil
}

// Delete removes an account. Admin accounts cannot be deleted.
func (u *UserUseCase) Delete(ctx context.Context, actor model.Actor, id int64) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if usr.Role == model.RoleAdmin {
		return fmt.Errorf("%w: admin accounts cannot be deleted", domainErrors.ErrForbidden)
	}
	if err := u.users.Delete(ctx, id); err != nil {
		return err
	}
	u.logger.Info("user deleted", slog.Int64("user_id", id), slog.Int64("by", actor.ID))
	return nil
}

// Stats aggregates account counters.
func (u *UserUseCase) Stats(ctx context.Context, actor model.Actor) (*model.UserStats, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleMonitoring); err != nil {
		return nil, err
	}
	return u.users.Stats(ctx)
}

// EnsureAdmin creates a verified admin with phone unless the phone is taken.
// It reports whether an account was created.
func (u *UserUseCase) EnsureAdmin(ctx context.Context, phone, password string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if err := validateCredentials(phone, password); err != nil {
		return false, err
	}

	existing, err := u.users.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		if existing.Role != model.RoleAdmin {
			u.logger.Warn("bootstrap admin phone belongs to a non-admin account", slog.Int64("user_id", existing.ID))
		}
		return false, nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return false, err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	usr, err := u.users.Create(ctx, &model.User{
		Phone:        phone,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}

	u.logger.Info("bootstrap admin created", slog.Int64("user_id", usr.ID))
	return true, nil
}

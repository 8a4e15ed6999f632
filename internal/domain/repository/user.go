package repository

import (
	"context"
	"time"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, filter model.UserFilter, page model.Page) ([]model.User, int64, error)
	ListIDsByRole(ctx context.Context, role model.Role) ([]int64, error)
	UpdateName(ctx context.Context, id int64, name string) (*model.User, error)
	UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error)
	SetActive(ctx context.Context, id int64, active bool) (*model.User, error)
	SetVerified(ctx context.Context, id int64, verified bool) (*model.User, error)
	TouchLogin(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*model.UserStats, error)
}

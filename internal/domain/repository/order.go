package repository

import (
	"context"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Update applies the patch only while the stored status equals
// patch.ExpectedStatus (and the driver equals patch.ExpectedDriverID when set).
// A lost race is reported as errors.ErrConflict.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int64, error)
	Update(ctx context.Context, id int64, patch model.OrderPatch) (*model.Order, error)
	CountActiveByDriver(ctx context.Context, driverID int64) (int, error)
	Stats(ctx context.Context) (*model.OrderStats, error)
}

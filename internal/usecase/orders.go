package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkiloo/fueldelivery/internal/config"
	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/lifecycle"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/domain/repository"
	"github.com/polkiloo/fueldelivery/internal/metrics"
)

// StatusChange is a generic status change request.
type StatusChange struct {
	Status   model.OrderStatus
	Price    *float64
	DriverID *int64
	Reason   string
}

// OrderUseCase coordinates orders with the transition rules.
type OrderUseCase struct {
	orders         repository.OrderRepository
	users          repository.UserRepository
	emitter        *NotificationEmitter
	metrics        *metrics.Metrics
	logger         *slog.Logger
	driverCapacity int
	now            func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	users repository.UserRepository,
	emitter *NotificationEmitter,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg *config.Config,
) *OrderUseCase {
	capacity := 1
	if cfg != nil && cfg.DriverCapacity > 0 {
		capacity = cfg.DriverCapacity
	}
	return &OrderUseCase{
		orders:         orders,
		users:          users,
		emitter:        emitter,
		metrics:        m,
		logger:         logger,
		driverCapacity: capacity,
		now:            time.Now,
	}
}

// CreateFuel places a fuel delivery order for the actor.
func (u *OrderUseCase) CreateFuel(ctx context.Context, actor model.Actor, details model.OrderDetails) (*model.Order, error) {
	details, err := validateFuelDetails(details)
	if err != nil {
		return nil, err
	}
	return u.create(ctx, actor, model.OrderKindFuel, details)
}

// CreateProduct places a product delivery order for the actor.
func (u *OrderUseCase) CreateProduct(ctx context.Context, actor model.Actor, details model.OrderDetails) (*model.Order, error) {
	details, err := validateProductDetails(details)
	if err != nil {
		return nil, err
	}
	return u.create(ctx, actor, model.OrderKindProduct, details)
}

func (u *OrderUseCase) create(ctx context.Context, actor model.Actor, kind model.OrderKind, details model.OrderDetails) (*model.Order, error) {
	order, err := u.orders.Create(ctx, &model.Order{
		Kind:       kind,
		CustomerID: actor.ID,
		Status:     model.OrderStatusPending,
		Details:    details,
	})
	if err != nil {
		return nil, err
	}
	u.logger.Info("order created", slog.Int64("order_id", order.ID), slog.String("kind", string(kind)), slog.Int64("customer_id", actor.ID))
	return order, nil
}

// Get returns an order visible to the actor.
func (u *OrderUseCase) Get(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(*order, actor) {
		return nil, fmt.Errorf("%w: order %d is not visible to you", domainErrors.ErrForbidden, id)
	}
	return order, nil
}

// GetKind is Get restricted to orders of kind. Orders of another kind are
// reported as not found.
func (u *OrderUseCase) GetKind(ctx context.Context, actor model.Actor, id int64, kind model.OrderKind) (*model.Order, error) {
	order, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.Kind != kind {
		return nil, fmt.Errorf("%w: %s order %d", domainErrors.ErrNotFound, kind, id)
	}
	return order, nil
}

// List returns the orders visible to the actor. Customers only see their own
// orders and drivers those they placed or are assigned to.
func (u *OrderUseCase) List(ctx context.Context, actor model.Actor, filter model.OrderFilter, page model.Page) ([]model.Order, int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domainErrors.ErrValidation, *filter.Status)
	}
	if filter.Kind != nil && !filter.Kind.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown kind %q", domainErrors.ErrValidation, *filter.Kind)
	}

	self := actor.ID
	switch actor.Role {
	case model.RoleCustomer:
		filter.CustomerID = &self
	case model.RoleDriver:
		filter.ParticipantID = &self
	case model.RoleAdmin, model.RoleApprovalSupervisor, model.RoleMonitoring:
	default:
		return nil, 0, fmt.Errorf("%w: role %s cannot list orders", domainErrors.ErrForbidden, actor.Role)
	}
	return u.orders.List(ctx, filter, page)
}

// ChangeStatus applies a generic status change.
func (u *OrderUseCase) ChangeStatus(ctx context.Context, actor model.Actor, id int64, change StatusChange) (*model.Order, error) {
	reason, err := validateText("reason", change.Reason, false)
	if err != nil {
		return nil, err
	}
	return u.transition(ctx, id, lifecycle.Request{
		Actor:  actor,
		Target: change.Status,
		Price:  change.Price,
		Reason: reason,
	}, change.DriverID)
}

// SetPrice prices a pending order.
func (u *OrderUseCase) SetPrice(ctx context.Context, actor model.Actor, id int64, price float64) (*model.Order, error) {
	return u.transition(ctx, id, lifecycle.Request{Actor: actor, Target: model.OrderStatusPriced, Price: &price}, nil)
}

// AssignDriver assigns a driver to a priced order.
func (u *OrderUseCase) AssignDriver(ctx context.Context, actor model.Actor, id, driverID int64) (*model.Order, error) {
	return u.transition(ctx, id, lifecycle.Request{Actor: actor, Target: model.OrderStatusAssigned}, &driverID)
}

// Start moves an assigned order into delivery.
func (u *OrderUseCase) Start(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return u.transition(ctx, id, lifecycle.Request{Actor: actor, Target: model.OrderStatusInProgress}, nil)
}

// Complete finishes a delivery.
func (u *OrderUseCase) Complete(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return u.transition(ctx, id, lifecycle.Request{Actor: actor, Target: model.OrderStatusCompleted}, nil)
}

// Cancel cancels an order.
func (u *OrderUseCase) Cancel(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Order, error) {
	reason, err := validateText("reason", reason, false)
	if err != nil {
		return nil, err
	}
	return u.transition(ctx, id, lifecycle.Request{Actor: actor, Target: model.OrderStatusCancelled, Reason: reason}, nil)
}

// Track stores the latest position reported by the assigned driver.
func (u *OrderUseCase) Track(ctx context.Context, actor model.Actor, id int64, lat, lng float64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := lifecycle.AuthorizeTracking(*order, actor, model.Position{
		Lat:        lat,
		Lng:        lng,
		RecordedAt: u.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	updated, err := u.orders.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	u.logger.Debug("order position updated", slog.Int64("order_id", id), slog.Float64("lat", lat), slog.Float64("lng", lng))
	return updated, nil
}

// Stats aggregates order counters for back-office.
func (u *OrderUseCase) Stats(ctx context.Context, actor model.Actor) (*model.OrderStats, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleMonitoring); err != nil {
		return nil, err
	}
	return u.orders.Stats(ctx)
}

func (u *OrderUseCase) transition(ctx context.Context, id int64, req lifecycle.Request, driverID *int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Target == model.OrderStatusAssigned && driverID != nil {
		candidate, err := u.driverCandidate(ctx, *driverID)
		if err != nil {
			return nil, err
		}
		req.Driver = candidate
	}

	decision, err := lifecycle.Authorize(*order, req)
	if err != nil {
		return nil, err
	}
	if decision.Noop {
		return order, nil
	}

	updated, err := u.orders.Update(ctx, id, decision.Patch)
	if err != nil {
		if errors.Is(err, domainErrors.ErrConflict) {
			u.logger.Info("order transition lost a race",
				slog.Int64("order_id", id),
				slog.String("from", string(decision.From)),
				slog.String("to", string(decision.To)),
			)
		}
		return nil, err
	}

	u.metrics.ObserveTransition(string(decision.From), string(decision.To))
	u.logger.Info("order transitioned",
		slog.Int64("order_id", id),
		slog.String("from", string(decision.From)),
		slog.String("to", string(decision.To)),
		slog.Int64("actor_id", req.Actor.ID),
	)
	u.emitter.OrderTransitioned(ctx, *updated, decision.From)
	return updated, nil
}

// driverCandidate loads the proposed driver. Unknown users become an empty
// candidate so the rules report them as unavailable.
func (u *OrderUseCase) driverCandidate(ctx context.Context, driverID int64) (*lifecycle.DriverCandidate, error) {
	usr, err := u.users.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return &lifecycle.DriverCandidate{User: model.User{ID: driverID}, Capacity: u.driverCapacity}, nil
		}
		return nil, err
	}
	active, err := u.orders.CountActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return &lifecycle.DriverCandidate{User: *usr, ActiveOrders: active, Capacity: u.driverCapacity}, nil
}

func canView(order model.Order, actor model.Actor) bool {
	if actor.Role.Staff() {
		return true
	}
	if order.CustomerID == actor.ID {
		return true
	}
	return actor.Role == model.RoleDriver && order.DriverID != nil && *order.DriverID == actor.ID
}

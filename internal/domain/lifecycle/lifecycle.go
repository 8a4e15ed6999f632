// Package lifecycle decides which order transitions an actor may perform.
//
// The functions here are pure: they inspect an order snapshot and a request
// and return the guarded patch the store must apply. Persistence and
// notification are left to the caller.
package lifecycle

import (
	"fmt"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

var graph = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusPriced, model.OrderStatusCancelled},
	model.OrderStatusPriced:     {model.OrderStatusAssigned, model.OrderStatusCancelled},
	model.OrderStatusAssigned:   {model.OrderStatusInProgress, model.OrderStatusCancelled},
	model.OrderStatusInProgress: {model.OrderStatusCompleted, model.OrderStatusCancelled},
	model.OrderStatusCompleted:  nil,
	model.OrderStatusCancelled:  nil,
}

// NextStatuses lists the statuses reachable from s in one step.
func NextStatuses(s model.OrderStatus) []model.OrderStatus {
	next := graph[s]
	out := make([]model.OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is an edge of the status graph.
func CanTransition(from, to model.OrderStatus) bool {
	for _, s := range graph[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DriverCandidate describes the driver proposed for an assignment.
type DriverCandidate struct {
	User         model.User
	ActiveOrders int
	Capacity     int
}

// Available reports whether the driver may take one more order.
func (d DriverCandidate) Available() bool {
	if d.User.Role != model.RoleDriver || !d.User.IsActive || !d.User.IsVerified {
		return false
	}
	capacity := d.Capacity
	if capacity <= 0 {
		capacity = 1
	}
	return d.ActiveOrders < capacity
}

// Request is a requested status change.
type Request struct {
	Actor  model.Actor
	Target model.OrderStatus
	Price  *float64
	Driver *DriverCandidate
	Reason string
}

// Decision is the outcome of a permitted request. When Noop is set the order
// already reflects the request and nothing must be written.
type Decision struct {
	From  model.OrderStatus
	To    model.OrderStatus
	Patch model.OrderPatch
	Noop  bool
}

// Authorize validates req against the current order state.
func Authorize(order model.Order, req Request) (Decision, error) {
	switch req.Target {
	case model.OrderStatusPriced:
		return authorizePrice(order, req)
	case model.OrderStatusAssigned:
		return authorizeAssign(order, req)
	case model.OrderStatusInProgress:
		return authorizeStart(order, req)
	case model.OrderStatusCompleted:
		return authorizeComplete(order, req)
	case model.OrderStatusCancelled:
		return authorizeCancel(order, req)
	case model.OrderStatusPending:
		return Decision{}, fmt.Errorf("%w: orders cannot return to %s", domainErrors.ErrInvalidTransition, req.Target)
	}
	return Decision{}, fmt.Errorf("%w: unknown status %q", domainErrors.ErrValidation, req.Target)
}

func authorizePrice(order model.Order, req Request) (Decision, error) {
	if req.Actor.Role != model.RoleAdmin {
		return Decision{}, fmt.Errorf("%w: only admins set prices", domainErrors.ErrForbidden)
	}
	if req.Price == nil {
		return Decision{}, fmt.Errorf("%w: price is required", domainErrors.ErrValidation)
	}
	if order.Status == model.OrderStatusPriced && order.Price != nil && *order.Price == *req.Price {
		return noop(order), nil
	}
	if order.Status != model.OrderStatusPending {
		return Decision{}, fmt.Errorf("%w: price can only be set on pending orders, order is %s", domainErrors.ErrInvalidState, order.Status)
	}
	if *req.Price <= 0 {
		return Decision{}, fmt.Errorf("%w: %w: price must be positive", domainErrors.ErrInvalidState, domainErrors.ErrValidation)
	}

	d := advance(order, model.OrderStatusPriced)
	price := *req.Price
	d.Patch.Price = &price
	return d, nil
}

func authorizeAssign(order model.Order, req Request) (Decision, error) {
	if req.Actor.Role != model.RoleAdmin && req.Actor.Role != model.RoleApprovalSupervisor {
		return Decision{}, fmt.Errorf("%w: only admins and supervisors assign drivers", domainErrors.ErrForbidden)
	}
	if req.Driver == nil {
		return Decision{}, fmt.Errorf("%w: driver is required", domainErrors.ErrValidation)
	}
	driverID := req.Driver.User.ID
	if order.Status == model.OrderStatusAssigned && order.DriverID != nil && *order.DriverID == driverID {
		return noop(order), nil
	}
	if order.Status != model.OrderStatusPriced {
		return Decision{}, fmt.Errorf("%w: drivers can only be assigned to priced orders, order is %s", domainErrors.ErrInvalidState, order.Status)
	}
	if !req.Driver.Available() {
		return Decision{}, fmt.Errorf("%w: driver %d", domainErrors.ErrDriverUnavailable, driverID)
	}

	d := advance(order, model.OrderStatusAssigned)
	d.Patch.DriverID = &driverID
	return d, nil
}

func authorizeStart(order model.Order, req Request) (Decision, error) {
	if !isAssignedDriver(order, req.Actor) {
		return Decision{}, fmt.Errorf("%w: only the assigned driver starts a delivery", domainErrors.ErrForbidden)
	}
	if order.Status == model.OrderStatusInProgress {
		return noop(order), nil
	}
	if order.Status != model.OrderStatusAssigned {
		return Decision{}, invalidTransition(order.Status, model.OrderStatusInProgress)
	}

	d := advance(order, model.OrderStatusInProgress)
	d.Patch.ExpectedDriverID = order.DriverID
	return d, nil
}

func authorizeComplete(order model.Order, req Request) (Decision, error) {
	driver := isAssignedDriver(order, req.Actor)
	if !driver && req.Actor.Role != model.RoleAdmin && req.Actor.Role != model.RoleApprovalSupervisor {
		return Decision{}, fmt.Errorf("%w: only the assigned driver or staff complete a delivery", domainErrors.ErrForbidden)
	}
	if order.Status == model.OrderStatusCompleted {
		return noop(order), nil
	}
	if order.Status != model.OrderStatusInProgress {
		return Decision{}, invalidTransition(order.Status, model.OrderStatusCompleted)
	}

	d := advance(order, model.OrderStatusCompleted)
	if driver {
		d.Patch.ExpectedDriverID = order.DriverID
	}
	return d, nil
}

func authorizeCancel(order model.Order, req Request) (Decision, error) {
	staff := req.Actor.Role == model.RoleAdmin || req.Actor.Role == model.RoleApprovalSupervisor
	owner := req.Actor.ID == order.CustomerID
	if !staff && !owner {
		return Decision{}, fmt.Errorf("%w: not allowed to cancel this order", domainErrors.ErrForbidden)
	}
	if order.Status == model.OrderStatusCancelled {
		return noop(order), nil
	}
	if order.Status.Terminal() {
		return Decision{}, invalidTransition(order.Status, model.OrderStatusCancelled)
	}
	if !staff && order.Status != model.OrderStatusPending {
		return Decision{}, fmt.Errorf("%w: owners can only cancel pending orders", domainErrors.ErrForbidden)
	}

	d := advance(order, model.OrderStatusCancelled)
	reason := req.Reason
	d.Patch.CancelReason = &reason
	return d, nil
}

// AuthorizeTracking validates a position report for order.
func AuthorizeTracking(order model.Order, actor model.Actor, pos model.Position) (model.OrderPatch, error) {
	if !isAssignedDriver(order, actor) {
		return model.OrderPatch{}, fmt.Errorf("%w: only the assigned driver reports positions", domainErrors.ErrForbidden)
	}
	if order.Status != model.OrderStatusInProgress {
		return model.OrderPatch{}, fmt.Errorf("%w: tracking requires an in progress order, order is %s", domainErrors.ErrForbidden, order.Status)
	}
	if pos.Lat < -90 || pos.Lat > 90 || pos.Lng < -180 || pos.Lng > 180 {
		return model.OrderPatch{}, fmt.Errorf("%w: coordinates out of range", domainErrors.ErrValidation)
	}

	return model.OrderPatch{
		ExpectedStatus:   order.Status,
		ExpectedDriverID: order.DriverID,
		Position:         &pos,
	}, nil
}

func isAssignedDriver(order model.Order, actor model.Actor) bool {
	return actor.Role == model.RoleDriver && order.DriverID != nil && *order.DriverID == actor.ID
}

func advance(order model.Order, to model.OrderStatus) Decision {
	status := to
	return Decision{
		From: order.Status,
		To:   to,
		Patch: model.OrderPatch{
			ExpectedStatus: order.Status,
			Status:         &status,
		},
	}
}

func noop(order model.Order) Decision {
	return Decision{From: order.Status, To: order.Status, Noop: true}
}

func invalidTransition(from, to model.OrderStatus) error {
	return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, from, to)
}

package app

import (
	"context"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/usecase"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DeliveryFacade exposes the use cases behind the HTTP surface.
type DeliveryFacade struct {
	auth          *usecase.AuthUseCase
	users         *usecase.UserUseCase
	orders        *usecase.OrderUseCase
	notifications *usecase.NotificationUseCase
	health        HealthChecker
}

func NewDeliveryFacade(
	auth *usecase.AuthUseCase,
	users *usecase.UserUseCase,
	orders *usecase.OrderUseCase,
	notifications *usecase.NotificationUseCase,
	health HealthChecker,
) *DeliveryFacade {
	return &DeliveryFacade{auth: auth, users: users, orders: orders, notifications: notifications, health: health}
}

func (f *DeliveryFacade) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error) {
	return f.auth.Register(ctx, in)
}

func (f *DeliveryFacade) Authenticate(ctx context.Context, phone, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, phone, password)
}

func (f *DeliveryFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *DeliveryFacade) Actor(ctx context.Context, userID int64) (model.Actor, error) {
	return f.auth.Actor(ctx, userID)
}

func (f *DeliveryFacade) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	return f.auth.GetByID(ctx, actor.ID)
}

func (f *DeliveryFacade) CreateFuelOrder(ctx context.Context, actor model.Actor, details model.OrderDetails) (*model.Order, error) {
	return f.orders.CreateFuel(ctx, actor, details)
}

func (f *DeliveryFacade) CreateProductOrder(ctx context.Context, actor model.Actor, details model.OrderDetails) (*model.Order, error) {
	return f.orders.CreateProduct(ctx, actor, details)
}

func (f *DeliveryFacade) Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, actor, id)
}

func (f *DeliveryFacade) OrderOfKind(ctx context.Context, actor model.Actor, id int64, kind model.OrderKind) (*model.Order, error) {
	return f.orders.GetKind(ctx, actor, id, kind)
}

func (f *DeliveryFacade) Orders(ctx context.Context, actor model.Actor, filter model.OrderFilter, page model.Page) ([]model.Order, int64, error) {
	return f.orders.List(ctx, actor, filter, page)
}

func (f *DeliveryFacade) ChangeOrderStatus(ctx context.Context, actor model.Actor, id int64, change usecase.StatusChange) (*model.Order, error) {
	return f.orders.ChangeStatus(ctx, actor, id, change)
}

func (f *DeliveryFacade) SetOrderPrice(ctx context.Context, actor model.Actor, id int64, price float64) (*model.Order, error) {
	return f.orders.SetPrice(ctx, actor, id, price)
}

func (f *DeliveryFacade) AssignDriver(ctx context.Context, actor model.Actor, id, driverID int64) (*model.Order, error) {
	return f.orders.AssignDriver(ctx, actor, id, driverID)
}

func (f *DeliveryFacade) StartOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.Start(ctx, actor, id)
}

func (f *DeliveryFacade) CompleteOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.Complete(ctx, actor, id)
}

func (f *DeliveryFacade) CancelOrder(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Order, error) {
	return f.orders.Cancel(ctx, actor, id, reason)
}

func (f *DeliveryFacade) TrackOrder(ctx context.Context, actor model.Actor, id int64, lat, lng float64) (*model.Order, error) {
	return f.orders.Track(ctx, actor, id, lat, lng)
}

func (f *DeliveryFacade) OrderStats(ctx context.Context, actor model.Actor) (*model.OrderStats, error) {
	return f.orders.Stats(ctx, actor)
}

func (f *DeliveryFacade) CreateUser(ctx context.Context, actor model.Actor, in usecase.CreateUserInput) (*model.User, error) {
	return f.users.Create(ctx, actor, in)
}

func (f *DeliveryFacade) Users(ctx context.Context, actor model.Actor, filter model.UserFilter, page model.Page) ([]model.User, int64, error) {
	return f.users.List(ctx, actor, filter, page)
}

func (f *DeliveryFacade) User(ctx context.Context, actor model.Actor, id int64) (*model.User, error) {
	return f.users.Get(ctx, actor, id)
}

func (f *DeliveryFacade) UpdateProfile(ctx context.Context, actor model.Actor, id int64, name string) (*model.User, error) {
	return f.users.UpdateProfile(ctx, actor, id, name)
}

func (f *DeliveryFacade) ChangeRole(ctx context.Context, actor model.Actor, id int64, role model.Role) (*model.User, error) {
	return f.users.ChangeRole(ctx, actor, id, role)
}

func (f *DeliveryFacade) ManageDriver(ctx context.Context, actor model.Actor, driverID int64, action, reason string) (*model.User, error) {
	return f.users.SetDriverStatus(ctx, actor, driverID, action, reason)
}

func (f *DeliveryFacade) ReviewProfile(ctx context.Context, actor model.Actor, id int64, approve bool, reason string) (*model.User, error) {
	return f.users.ReviewProfile(ctx, actor, id, approve, reason)
}

func (f *DeliveryFacade) DeleteUser(ctx context.Context, actor model.Actor, id int64) error {
	return f.users.Delete(ctx, actor, id)
}

func (f *DeliveryFacade) UserStats(ctx context.Context, actor model.Actor) (*model.UserStats, error) {
	return f.users.Stats(ctx, actor)
}

func (f *DeliveryFacade) MyNotifications(ctx context.Context, actor model.Actor, unreadOnly bool, page model.Page) ([]model.Notification, int64, error) {
	return f.notifications.Mine(ctx, actor, unreadOnly, page)
}

func (f *DeliveryFacade) MyNotificationStats(ctx context.Context, actor model.Actor) (*model.InboxStats, error) {
	return f.notifications.MyStats(ctx, actor)
}

func (f *DeliveryFacade) MarkNotificationRead(ctx context.Context, actor model.Actor, id int64) error {
	return f.notifications.MarkRead(ctx, actor, id)
}

func (f *DeliveryFacade) MarkAllNotificationsRead(ctx context.Context, actor model.Actor) (int64, error) {
	return f.notifications.MarkAllRead(ctx, actor)
}

func (f *DeliveryFacade) SendToUser(ctx context.Context, actor model.Actor, userID int64, in usecase.AnnouncementInput) (*model.Notification, error) {
	return f.notifications.SendToUser(ctx, actor, userID, in)
}

func (f *DeliveryFacade) SendToGroup(ctx context.Context, actor model.Actor, role model.Role, in usecase.AnnouncementInput) (int, error) {
	return f.notifications.SendToGroup(ctx, actor, role, in)
}

func (f *DeliveryFacade) DeleteNotification(ctx context.Context, actor model.Actor, id int64) error {
	return f.notifications.Delete(ctx, actor, id)
}

func (f *DeliveryFacade) NotificationStats(ctx context.Context, actor model.Actor) (*model.NotificationStats, error) {
	return f.notifications.AdminStats(ctx, actor)
}

func (f *DeliveryFacade) Health(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}

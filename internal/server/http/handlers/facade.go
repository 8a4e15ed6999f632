package handlers

import (
	"context"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error)
	Authenticate(ctx context.Context, phone, password string) (*model.User, string, error)
	ParseToken(token string) (int64, error)
	Actor(ctx context.Context, userID int64) (model.Actor, error)
	Me(ctx context.Context, actor model.Actor) (*model.User, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateFuelOrder(ctx context.Context, actor model.Actor, details model.OrderDetails) (*model.Order, error)
	CreateProductOrder(ctx context.Context, actor model.Actor, details model.OrderDetails) (*model.Order, error)
	Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	OrderOfKind(ctx context.Context, actor model.Actor, id int64, kind model.OrderKind) (*model.Order, error)
	Orders(ctx context.Context, actor model.Actor, filter model.OrderFilter, page model.Page) ([]model.Order, int64, error)
	ChangeOrderStatus(ctx context.Context, actor model.Actor, id int64, change usecase.StatusChange) (*model.Order, error)
	SetOrderPrice(ctx context.Context, actor model.Actor, id int64, price float64) (*model.Order, error)
	AssignDriver(ctx context.Context, actor model.Actor, id, driverID int64) (*model.Order, error)
	StartOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	CompleteOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	CancelOrder(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Order, error)
	TrackOrder(ctx context.Context, actor model.Actor, id int64, lat, lng float64) (*model.Order, error)
	OrderStats(ctx context.Context, actor model.Actor) (*model.OrderStats, error)
}

// UserFacade provides back-office account management.
type UserFacade interface {
	CreateUser(ctx context.Context, actor model.Actor, in usecase.CreateUserInput) (*model.User, error)
	Users(ctx context.Context, actor model.Actor, filter model.UserFilter, page model.Page) ([]model.User, int64, error)
	User(ctx context.Context, actor model.Actor, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, actor model.Actor, id int64, name string) (*model.User, error)
	ChangeRole(ctx context.Context, actor model.Actor, id int64, role model.Role) (*model.User, error)
	ManageDriver(ctx context.Context, actor model.Actor, driverID int64, action, reason string) (*model.User, error)
	ReviewProfile(ctx context.Context, actor model.Actor, id int64, approve bool, reason string) (*model.User, error)
	DeleteUser(ctx context.Context, actor model.Actor, id int64) error
	UserStats(ctx context.Context, actor model.Actor) (*model.UserStats, error)
}

// NotificationFacade serves inboxes and announcements.
type NotificationFacade interface {
	MyNotifications(ctx context.Context, actor model.Actor, unreadOnly bool, page model.Page) ([]model.Notification, int64, error)
	MyNotificationStats(ctx context.Context, actor model.Actor) (*model.InboxStats, error)
	MarkNotificationRead(ctx context.Context, actor model.Actor, id int64) error
	MarkAllNotificationsRead(ctx context.Context, actor model.Actor) (int64, error)
	SendToUser(ctx context.Context, actor model.Actor, userID int64, in usecase.AnnouncementInput) (*model.Notification, error)
	SendToGroup(ctx context.Context, actor model.Actor, role model.Role, in usecase.AnnouncementInput) (int, error)
	DeleteNotification(ctx context.Context, actor model.Actor, id int64) error
	NotificationStats(ctx context.Context, actor model.Actor) (*model.NotificationStats, error)
}

// DeliveryFacade aggregates the full set of operations used across handlers.
type DeliveryFacade interface {
	AuthFacade
	OrderFacade
	UserFacade
	NotificationFacade
	Health(ctx context.Context) error
}

package repository

import (
	"context"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

// NotificationRepository stores user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
	ListByUser(ctx context.Context, userID int64, filter model.NotificationFilter, page model.Page) ([]model.Notification, int64, error)
	InboxStats(ctx context.Context, userID int64) (*model.InboxStats, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*model.NotificationStats, error)
}

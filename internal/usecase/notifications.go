package usecase

import (
	"context"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/domain/repository"
	"github.com/polkiloo/fueldelivery/internal/metrics"
)

// AnnouncementInput is a manual message composed by staff.
type AnnouncementInput struct {
	Title string
	Body  string
	Data  map[string]any
}

func (in AnnouncementInput) validate() (AnnouncementInput, error) {
	var err error
	if in.Title, err = validateText("title", in.Title, true); err != nil {
		return in, err
	}
	if in.Body, err = validateText("body", in.Body, true); err != nil {
		return in, err
	}
	return in, nil
}

// NotificationUseCase serves user inboxes and staff announcements.
type NotificationUseCase struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewNotificationUseCase constructs NotificationUseCase.
func NewNotificationUseCase(notifications repository.NotificationRepository, users repository.UserRepository, m *metrics.Metrics, logger *slog.Logger) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications, users: users, metrics: m, logger: logger}
}

// Mine lists the actor's notifications, newest first.
func (u *NotificationUseCase) Mine(ctx context.Context, actor model.Actor, unreadOnly bool, page model.Page) ([]model.Notification, int64, error) {
	return u.notifications.ListByUser(ctx, actor.ID, model.NotificationFilter{UnreadOnly: unreadOnly}, page)
}

// MyStats counts the actor's notifications.
func (u *NotificationUseCase) MyStats(ctx context.Context, actor model.Actor) (*model.InboxStats, error) {
	return u.notifications.InboxStats(ctx, actor.ID)
}

// MarkRead marks one of the actor's notifications as read.
func (u *NotificationUseCase) MarkRead(ctx context.Context, actor model.Actor, id int64) error {
	return u.notifications.MarkRead(ctx, id, actor.ID)
}

// MarkAllRead marks every notification of the actor as read.
func (u *NotificationUseCase) MarkAllRead(ctx context.Context, actor model.Actor) (int64, error) {
	return u.notifications.MarkAllRead(ctx, actor.ID)
}

// SendToUser stores an announcement for a single user.
func (u *NotificationUseCase) SendToUser(ctx context.Context, actor model.Actor, userID int64, in AnnouncementInput) (*model.Notification, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleMonitoring); err != nil {
		return nil, err
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	if _, err := u.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return u.notifications.Create(ctx, &model.Notification{
		UserID: userID,
		Type:   model.NotificationAnnouncement,
		Title:  in.Title,
		Body:   in.Body,
		Data:   in.Data,
	})
}

// SendToGroup stores an announcement for every user with role and returns how
// many were stored. Individual failures are logged and skipped.
func (u *NotificationUseCase) SendToGroup(ctx context.Context, actor model.Actor, role model.Role, in AnnouncementInput) (int, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleMonitoring); err != nil {
		return 0, err
	}
	if !role.Valid() {
		return 0, fmt.Errorf("%w: unknown role %q", domainErrors.ErrValidation, role)
	}
	in, err := in.validate()
	if err != nil {
		return 0, err
	}

	ids, err := u.users.ListIDsByRole(ctx, role)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, id := range ids {
		_, err := u.notifications.Create(ctx, &model.Notification{
			UserID: id,
			Type:   model.NotificationAnnouncement,
			Title:  in.Title,
			Body:   in.Body,
			Data:   in.Data,
		})
		if err != nil {
			u.metrics.NotificationFailed()
			u.logger.Warn("announcement not stored", slog.Int64("user_id", id), slog.String("error", err.Error()))
			continue
		}
		sent++
	}

	u.logger.Info("announcement sent", slog.String("role", string(role)), slog.Int("recipients", sent))
	return sent, nil
}

// Delete removes a notification.
func (u *NotificationUseCase) Delete(ctx context.Context, actor model.Actor, id int64) error {
	if err := requireRole(actor, model.RoleAdmin, model.RoleMonitoring); err != nil {
		return err
	}
	return u.notifications.Delete(ctx, id)
}

// AdminStats aggregates notifications across all users.
func (u *NotificationUseCase) AdminStats(ctx context.Context, actor model.Actor) (*model.NotificationStats, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleMonitoring); err != nil {
		return nil, err
	}
	return u.notifications.Stats(ctx)
}

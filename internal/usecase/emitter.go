package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/domain/repository"
	"github.com/polkiloo/fueldelivery/internal/metrics"
)

// Driver status actions accepted by SetDriverStatus.
const (
	DriverActionActivate   = "activate"
	DriverActionDeactivate = "deactivate"
	DriverActionSuspend    = "suspend"
)

// NotificationEmitter turns domain events into stored notifications.
//
// Emission is best effort: failures are logged and counted, never returned.
type NotificationEmitter struct {
	notifications repository.NotificationRepository
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewNotificationEmitter constructs NotificationEmitter.
func NewNotificationEmitter(notifications repository.NotificationRepository, m *metrics.Metrics, logger *slog.Logger) *NotificationEmitter {
	return &NotificationEmitter{notifications: notifications, metrics: m, logger: logger}
}

// OrderTransitioned notifies the parties of an order that moved from one status
// to order.Status.
func (e *NotificationEmitter) OrderTransitioned(ctx context.Context, order model.Order, from model.OrderStatus) {
	data := map[string]any{
		"orderId": order.ID,
		"kind":    string(order.Kind),
		"from":    string(from),
		"to":      string(order.Status),
	}

	switch order.Status {
	case model.OrderStatusPriced:
		if order.Price != nil {
			data["price"] = *order.Price
		}
		e.emit(ctx, order.CustomerID, model.NotificationOrderPriced,
			"Order priced",
			fmt.Sprintf("Your order #%d has been priced%s.", order.ID, priceSuffix(order.Price)),
			data)
	case model.OrderStatusAssigned:
		if order.DriverID != nil {
			data["driverId"] = *order.DriverID
			e.emit(ctx, *order.DriverID, model.NotificationOrderAssigned,
				"New order assigned",
				fmt.Sprintf("Order #%d has been assigned to you.", order.ID),
				data)
		}
		e.emit(ctx, order.CustomerID, model.NotificationOrderAssigned,
			"Driver assigned",
			fmt.Sprintf("A driver has been assigned to your order #%d.", order.ID),
			data)
	case model.OrderStatusCompleted:
		e.emit(ctx, order.CustomerID, model.NotificationOrderCompleted,
			"Order completed",
			fmt.Sprintf("Your order #%d has been delivered.", order.ID),
			data)
	case model.OrderStatusCancelled:
		if order.CancelReason != "" {
			data["reason"] = order.CancelReason
		}
		e.emit(ctx, order.CustomerID, model.NotificationOrderCancelled,
			"Order cancelled",
			fmt.Sprintf("Your order #%d has been cancelled.", order.ID),
			data)
		if order.DriverID != nil {
			e.emit(ctx, *order.DriverID, model.NotificationOrderCancelled,
				"Order cancelled",
				fmt.Sprintf("Order #%d assigned to you has been cancelled.", order.ID),
				data)
		}
	case model.OrderStatusPending, model.OrderStatusInProgress:
	}
}

// DriverStatusChanged tells a driver that staff changed their account status.
func (e *NotificationEmitter) DriverStatusChanged(ctx context.Context, driver model.User, action, reason string) {
	var title, body string
	switch action {
	case DriverActionActivate:
		title, body = "Account activated", "Your driver account has been activated."
	case DriverActionSuspend:
		title, body = "Account suspended", "Your driver account has been suspended."
	default:
		title, body = "Account deactivated", "Your driver account has been deactivated."
	}
	if reason != "" {
		body += " Reason: " + reason
	}
	e.emit(ctx, driver.ID, model.NotificationDriverStatus, title, body, map[string]any{
		"action": action,
		"reason": reason,
	})
}

// ProfileReviewed tells a user the outcome of their profile review.
func (e *NotificationEmitter) ProfileReviewed(ctx context.Context, user model.User, approved bool, reason string) {
	if approved {
		e.emit(ctx, user.ID, model.NotificationProfileApproved,
			"Profile approved", "Your profile has been approved.", nil)
		return
	}
	body := "Your profile has been rejected."
	if reason != "" {
		body += " Reason: " + reason
	}
	e.emit(ctx, user.ID, model.NotificationProfileRejected,
		"Profile rejected", body, map[string]any{"reason": reason})
}

func (e *NotificationEmitter) emit(ctx context.Context, userID int64, typ model.NotificationType, title, body string, data map[string]any) {
	_, err := e.notifications.Create(ctx, &model.Notification{
		UserID: userID,
		Type:   typ,
		Title:  title,
		Body:   body,
		Data:   data,
	})
	if err != nil {
		e.metrics.NotificationFailed()
		e.logger.Warn("notification not stored",
			slog.Int64("user_id", userID),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}

func priceSuffix(price *float64) string {
	if price == nil {
		return ""
	}
	return fmt.Sprintf(" at %.2f", *price)
}

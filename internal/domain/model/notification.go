package model

import "time"

// NotificationType classifies notifications.
type NotificationType string

const (
	NotificationDriverStatus    NotificationType = "driver_status"
	NotificationProfileApproved NotificationType = "profile_approved"
	NotificationProfileRejected NotificationType = "profile_rejected"
	NotificationOrderPriced     NotificationType = "order_priced"
	NotificationOrderAssigned   NotificationType = "order_assigned"
	NotificationOrderCompleted  NotificationType = "order_completed"
	NotificationOrderCancelled  NotificationType = "order_cancelled"
	NotificationAnnouncement    NotificationType = "announcement"
)

// Notification is a message addressed to a single user.
type Notification struct {
	ID        int64
	UserID    int64
	Type      NotificationType
	Title     string
	Body      string
	Data      map[string]any
	IsRead    bool
	CreatedAt time.Time
}

// NotificationFilter narrows a user's inbox.
type NotificationFilter struct {
	UnreadOnly bool
}

// InboxStats summarises a user's inbox.
type InboxStats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// NotificationStats aggregates notifications for back-office.
type NotificationStats struct {
	Total  int64                      `json:"total"`
	Today  int64                      `json:"today"`
	ByType map[NotificationType]int64 `json:"byType"`
}

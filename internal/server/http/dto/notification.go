package dto

import (
	"time"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

// NotificationResponse is a single inbox entry.
type NotificationResponse struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data,omitempty"`
	IsRead    bool           `json:"isRead"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewNotificationResponse converts a domain notification.
func NewNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.Data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// NewNotificationResponses converts a slice of domain notifications.
func NewNotificationResponses(items []model.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NewNotificationResponse(n))
	}
	return out
}

// SendToUserRequest addresses an announcement to one user.
type SendToUserRequest struct {
	UserID int64          `json:"userId" binding:"required"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data"`
}

// SendToGroupRequest addresses an announcement to every user of a role.
type SendToGroupRequest struct {
	Role  string         `json:"role" binding:"required"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data"`
}

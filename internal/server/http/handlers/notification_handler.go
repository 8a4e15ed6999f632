package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/server/http/dto"
	"github.com/polkiloo/fueldelivery/internal/usecase"
)

// NotificationHandler serves inbox and announcement endpoints.
type NotificationHandler struct {
	facade NotificationFacade
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(facade NotificationFacade) *NotificationHandler {
	return &NotificationHandler{facade: facade}
}

// Mine handles GET /api/notifications/my-notifications.
func (h *NotificationHandler) Mine(c *gin.Context) {
	unread, ok := queryBool(c, "unread")
	if !ok {
		return
	}
	page := queryPage(c)
	items, total, err := h.facade.MyNotifications(c.Request.Context(), CurrentActor(c), unread != nil && *unread, page)
	if err != nil {
		fail(c, err)
		return
	}
	payload := paginated(page, total)
	payload["notifications"] = dto.NewNotificationResponses(items)
	respond(c, http.StatusOK, "", payload)
}

// MyStats handles GET /api/notifications/stats.
func (h *NotificationHandler) MyStats(c *gin.Context) {
	stats, err := h.facade.MyNotificationStats(c.Request.Context(), CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"stats": stats})
}

// MarkRead handles PATCH /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.MarkNotificationRead(c.Request.Context(), CurrentActor(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "notification marked as read", nil)
}

// MarkAllRead handles PATCH /api/notifications/mark-all-read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.facade.MarkAllNotificationsRead(c.Request.Context(), CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "notifications marked as read", gin.H{"updated": n})
}

// SendToUser handles POST /api/notifications/send-to-user.
func (h *NotificationHandler) SendToUser(c *gin.Context) {
	var req dto.SendToUserRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.facade.SendToUser(c.Request.Context(), CurrentActor(c), req.UserID, usecase.AnnouncementInput{
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "notification sent", gin.H{"notification": dto.NewNotificationResponse(*n)})
}

// SendToGroup handles POST /api/notifications/send-to-group.
func (h *NotificationHandler) SendToGroup(c *gin.Context) {
	var req dto.SendToGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	sent, err := h.facade.SendToGroup(c.Request.Context(), CurrentActor(c), model.Role(req.Role), usecase.AnnouncementInput{
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "notifications sent", gin.H{"sent": sent})
}

// Delete handles DELETE /api/notifications/:id.
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteNotification(c.Request.Context(), CurrentActor(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "notification deleted", nil)
}

// AdminStats handles GET /api/notifications/admin/stats.
func (h *NotificationHandler) AdminStats(c *gin.Context) {
	stats, err := h.facade.NotificationStats(c.Request.Context(), CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"stats": stats})
}

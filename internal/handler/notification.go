package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"projectly/internal/model"
	"projectly/internal/service"
)

type NotificationHandler struct{ svc *service.NotificationService }

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// GET /notifications/?is_read=true|false
func (h *NotificationHandler) List(c *gin.Context) {
	var isRead *bool
	if raw, ok := c.GetQuery("is_read"); ok && raw != "" {
		v := strings.EqualFold(raw, "true")
		isRead = &v
	}
	items, err := h.svc.List(c.Request.Context(), caller(c), isRead)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(items, model.NewNotificationResponse))
}

// GET /notifications/unread-count/
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}

// PUT, PATCH /notifications/mark-as-read/
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "notifications marked as read", "updated": n})
}

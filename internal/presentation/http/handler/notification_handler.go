package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablebill-api/pkg/notify"
)

// NotificationHandler streams billing notifications to POS clients
type NotificationHandler struct {
	hub       *notify.Hub
	heartbeat time.Duration
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub, heartbeat: 25 * time.Second}
}

// Stream holds a server-sent events connection open. The connection
// receives events addressed to the staff member and to each of their roles.
func (h *NotificationHandler) Stream(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		return
	}

	recipients := []string{caller.StaffID.String()}
	for _, role := range caller.Roles {
		recipients = append(recipients, notify.RoleRecipient(role))
	}

	events, unregister := h.hub.Register(recipients...)
	defer unregister()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, open := <-events:
			if !open {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}

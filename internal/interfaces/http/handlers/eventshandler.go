package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storedesk/storedesk/internal/infrastructure/services"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/logger"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

const (
	SSEKeepaliveInterval = 30 * time.Second
	SSEContentType       = "text/event-stream"
)

// EventsHandler streams authStateChanged events to the station UI.
type EventsHandler struct {
	hub       stateStream
	auth      principalSource
	keepalive time.Duration
	logger    logger.Interface
}

func NewEventsHandler(hub stateStream, auth principalSource, log logger.Interface) *EventsHandler {
	return &EventsHandler{hub: hub, auth: auth, keepalive: SSEKeepaliveInterval, logger: log}
}

// Stream sends the current state first, then every change until the
// client disconnects.
// @Summary Stream login state changes
// @Tags Auth
// @Produce text/event-stream
// @Success 200 {string} string "authStateChanged events"
// @Failure 429 {object} utils.APIResponse
// @Router /auth/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	connID := uuid.NewString()
	conn := h.hub.Register(connID)
	if conn == nil {
		utils.ErrorResponse(c, http.StatusTooManyRequests, "too many connections")
		return
	}
	defer h.hub.Unregister(connID)

	c.Header("Content-Type", SSEContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	principal := h.auth.CurrentPrincipal()
	initial, err := services.FormatSSEEvent(services.AuthStateEventName, &services.AuthStateEvent{
		IsLoggedIn: principal != nil,
		Employee:   principal,
		OccurredAt: biztime.Now(),
	})
	if err != nil {
		h.logger.Errorw("failed to format initial SSE event", "error", err)
		return
	}
	if _, err := c.Writer.Write(initial); err != nil {
		h.logger.Warnw("SSE initial write error", "conn_id", connID, "error", err)
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()
	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debugw("SSE connection closed by client", "conn_id", connID)
			return
		case data, ok := <-conn.Send:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(data); err != nil {
				h.logger.Warnw("SSE write error", "conn_id", connID, "error", err)
				return
			}
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

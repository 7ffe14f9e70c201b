package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/shared/logger"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

// PresenceHandler receives page lifecycle signals from the station UI.
type PresenceHandler struct {
	presence presenceTracker
	logger   logger.Interface
}

func NewPresenceHandler(presence presenceTracker, log logger.Interface) *PresenceHandler {
	return &PresenceHandler{presence: presence, logger: log}
}

type VisibilityRequest struct {
	Hidden *bool `json:"hidden" binding:"required"`
}

// Visibility pauses or resumes the heartbeat
// @Summary Report page visibility
// @Tags Presence
// @Accept json
// @Produce json
// @Param request body VisibilityRequest true "Visibility"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /presence/visibility [post]
func (h *PresenceHandler) Visibility(c *gin.Context) {
	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	h.presence.OnVisibilityChange(c.Request.Context(), *req.Hidden)
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"heartbeat": string(h.presence.State())})
}

// Unload stops the heartbeat without touching the session
// @Summary Report page unload
// @Tags Presence
// @Success 204
// @Router /presence/unload [post]
func (h *PresenceHandler) Unload(c *gin.Context) {
	h.presence.OnUnload()
	utils.NoContentResponse(c)
}

// Status reports the heartbeat state
// @Summary Get heartbeat state
// @Tags Presence
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /presence [get]
func (h *PresenceHandler) Status(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"heartbeat": string(h.presence.State())})
}

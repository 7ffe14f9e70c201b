package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	sessionDto "github.com/storedesk/storedesk/internal/application/session/dto"
	"github.com/storedesk/storedesk/internal/shared/logger"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

var _ = sessionDto.ActiveSessionResponse{} // ensure import is used for swagger

type SessionHandler struct {
	coordinator sessionCoordinator
	logger      logger.Interface
}

func NewSessionHandler(coordinator sessionCoordinator, log logger.Interface) *SessionHandler {
	return &SessionHandler{coordinator: coordinator, logger: log}
}

// ListActive lists active sessions, optionally for one employee row id.
// @Summary List active sessions
// @Tags Sessions
// @Produce json
// @Param employee_id query string false "Employee row ID"
// @Success 200 {object} utils.APIResponse{data=utils.ItemsResponse{items=[]sessionDto.ActiveSessionResponse}}
// @Failure 401 {object} utils.APIResponse
// @Router /sessions [get]
func (h *SessionHandler) ListActive(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Query("employee_id"))

	sessions, err := h.coordinator.ListActiveSessions(c.Request.Context(), employeeID)
	if err != nil {
		h.logger.Errorw("failed to list active sessions", "employee_id", employeeID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ItemsSuccessResponse(c, sessions, len(sessions))
}

// LogoutOthers closes the employee's sessions on other devices
// @Summary Log out other devices
// @Tags Sessions
// @Produce json
// @Success 200 {object} utils.APIResponse{data=sessionDto.ForceLogoutResponse}
// @Failure 401 {object} utils.APIResponse
// @Router /sessions/logout-others [post]
func (h *SessionHandler) LogoutOthers(c *gin.Context) {
	result, err := h.coordinator.ForceLogoutOthers(c.Request.Context())
	if err != nil {
		h.logger.Warnw("force logout of other devices failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "other devices logged out", result)
}

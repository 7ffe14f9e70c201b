package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/domain/permission"
	"github.com/storedesk/storedesk/internal/shared/logger"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

type PageHandler struct {
	auth   principalSource
	guard  permission.PageGuard
	logger logger.Interface
}

func NewPageHandler(auth principalSource, guard permission.PageGuard, log logger.Interface) *PageHandler {
	return &PageHandler{auth: auth, guard: guard, logger: log}
}

type PageAccessResponse struct {
	Page         string   `json:"page"`
	Decision     string   `json:"decision"`
	Allowed      bool     `json:"allowed"`
	Requirements []string `json:"requirements"`
}

// GetAccess answers 200 for every decision; the UI reads "allowed".
// @Summary Check page access
// @Tags Pages
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} utils.APIResponse{data=PageAccessResponse}
// @Failure 500 {object} utils.APIResponse
// @Router /pages/{page}/access [get]
func (h *PageHandler) GetAccess(c *gin.Context) {
	page := c.Param("page")
	if page == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "page is required")
		return
	}

	decision, err := h.guard.CheckPage(c.Request.Context(), h.auth.CurrentPrincipal(), page)
	if err != nil {
		h.logger.Errorw("page access check failed", "page", page, "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "page access check failed")
		return
	}
	requirements, err := h.guard.Requirements(page)
	if err != nil {
		h.logger.Warnw("failed to read page requirements", "page", page, "error", err)
	}
	if requirements == nil {
		requirements = []string{}
	}

	utils.SuccessResponse(c, http.StatusOK, "", PageAccessResponse{
		Page:         page,
		Decision:     string(decision),
		Allowed:      decision.Allowed(),
		Requirements: requirements,
	})
}

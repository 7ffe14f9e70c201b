package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/shared/logger"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

type AuthHandler struct {
	auth   authService
	logger logger.Interface
}

func NewAuthHandler(auth authService, log logger.Interface) *AuthHandler {
	return &AuthHandler{auth: auth, logger: log}
}

type LoginRequest struct {
	EmployeeID string             `json:"employee_id" binding:"required"`
	Device     session.DeviceInfo `json:"device"`
}

type LoginResponse struct {
	Employee  *employee.Employee `json:"employee"`
	SessionID string             `json:"session_id"`
}

type StateResponse struct {
	State      string             `json:"state"`
	IsLoggedIn bool               `json:"is_logged_in"`
	Employee   *employee.Employee `json:"employee"`
	SessionID  string             `json:"session_id,omitempty"`
}

type PermissionCheckRequest struct {
	Required []string `json:"required"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// Login starts a session on this station
// @Summary Log in
// @Description Look up an employee by number or username, close stale sessions and open a new one
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Employee and device"
// @Success 200 {object} utils.APIResponse{data=LoginResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Device.UserAgent == "" {
		req.Device.UserAgent = c.Request.UserAgent()
	}

	principal, err := h.auth.Login(c.Request.Context(), req.EmployeeID, req.Device)
	if err != nil {
		h.logger.Warnw("login failed", "employee_id", req.EmployeeID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "login successful", LoginResponse{
		Employee:  principal,
		SessionID: h.auth.CurrentSessionID(),
	})
}

// Logout always succeeds locally. remote_invalidated reports whether the
// shared session row was closed as well.
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.auth.Logout(c.Request.Context())
	if err != nil {
		h.logger.Warnw("remote session invalidation failed during logout", "error", err)
	}
	utils.SuccessResponse(c, http.StatusOK, "logged out", gin.H{"remote_invalidated": err == nil})
}

// GetState reports the station login state
// @Summary Get login state
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse{data=StateResponse}
// @Router /auth/state [get]
func (h *AuthHandler) GetState(c *gin.Context) {
	principal := h.auth.CurrentPrincipal()
	resp := StateResponse{
		State:      string(h.auth.State()),
		IsLoggedIn: principal != nil,
		Employee:   principal,
	}
	if principal != nil {
		resp.SessionID = h.auth.CurrentSessionID()
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// CheckPermissions tests the current principal against a capability list
// @Summary Check permissions
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body PermissionCheckRequest true "Required capabilities"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /auth/permissions/check [post]
func (h *AuthHandler) CheckPermissions(c *gin.Context) {
	var req PermissionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"allowed":  h.auth.HasPermission(req.Required),
		"required": req.Required,
	})
}

// UpdateProfile renames the logged in employee
// @Summary Update profile
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "New name"
// @Success 200 {object} utils.APIResponse{data=employee.Employee}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), req.Name)
	if err != nil {
		h.logger.Errorw("profile update failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "profile updated", updated)
}

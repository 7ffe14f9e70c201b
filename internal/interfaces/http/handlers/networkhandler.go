package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/infrastructure/network"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/logger"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

var _ = network.Location{} // ensure import is used for swagger

type NetworkHandler struct {
	lookup ipLookup
	logger logger.Interface
}

func NewNetworkHandler(lookup ipLookup, log logger.Interface) *NetworkHandler {
	return &NetworkHandler{lookup: lookup, logger: log}
}

// PublicIP reports the station's public address
// @Summary Get public IP
// @Tags Station
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /network/ip [get]
func (h *NetworkHandler) PublicIP(c *gin.Context) {
	ip, err := h.lookup.PublicIP(c.Request.Context())
	if err != nil {
		h.logger.Warnw("public ip lookup failed", "error", err)
		utils.ErrorResponse(c, http.StatusBadGateway, "public ip unavailable")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"ip": ip})
}

// Location reports where an address is, for display only. Without ?ip it
// locates the station itself.
// @Summary Get IP location
// @Description Look up the approximate location of an IP address for display
// @Tags Station
// @Produce json
// @Param ip query string false "IP address, defaults to the station's public IP"
// @Success 200 {object} utils.APIResponse{data=network.Location}
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /network/location [get]
func (h *NetworkHandler) Location(c *gin.Context) {
	loc, err := h.lookup.LocationInfo(c.Request.Context(), strings.TrimSpace(c.Query("ip")))
	if err != nil {
		if errors.IsValidationError(err) {
			utils.ErrorResponseWithError(c, err)
			return
		}
		h.logger.Warnw("location lookup failed", "error", err)
		utils.ErrorResponse(c, http.StatusBadGateway, "location unavailable")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", loc)
}

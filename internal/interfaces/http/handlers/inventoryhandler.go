package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/domain/inventory"
	"github.com/storedesk/storedesk/internal/shared/logger"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

// InventoryHandler serves the catalogue tables and the sales history. The
// record handlers are bound to one table each by the router.
type InventoryHandler struct {
	service inventoryService
	logger  logger.Interface
}

func NewInventoryHandler(service inventoryService, log logger.Interface) *InventoryHandler {
	return &InventoryHandler{service: service, logger: log}
}

type CreateRecordRequest struct {
	LegacyKey string          `json:"legacyKey" binding:"max=128"`
	Payload   json.RawMessage `json:"payload" binding:"required"`
}

type UpdateRecordRequest struct {
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// ListRecords lists a catalogue table
// @Summary List catalogue records
// @Description List the records of a catalogue table, optionally narrowed to one legacy key
// @Tags Inventory
// @Produce json
// @Param table path string true "Catalogue table" Enums(products, categories, members, coupons, suppliers)
// @Param legacy_key query string false "Legacy key"
// @Success 200 {object} utils.APIResponse{data=utils.ItemsResponse{items=[]inventory.StoredRecord}}
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /data/{table} [get]
func (h *InventoryHandler) ListRecords(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		legacyKey := strings.TrimSpace(c.Query("legacy_key"))
		records, err := h.service.ListRecords(c.Request.Context(), table, legacyKey)
		if err != nil {
			h.logger.Errorw("failed to list records", "table", table, "error", err)
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.ItemsSuccessResponse(c, records, len(records))
	}
}

// GetRecord returns one catalogue record
// @Summary Get catalogue record
// @Tags Inventory
// @Produce json
// @Param table path string true "Catalogue table"
// @Param id path string true "Record ID"
// @Success 200 {object} utils.APIResponse{data=inventory.StoredRecord}
// @Failure 404 {object} utils.APIResponse
// @Router /data/{table}/{id} [get]
func (h *InventoryHandler) GetRecord(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := h.service.GetRecord(c.Request.Context(), table, c.Param("id"))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "", rec)
	}
}

// CreateRecord adds a catalogue record
// @Summary Create catalogue record
// @Tags Inventory
// @Accept json
// @Produce json
// @Param table path string true "Catalogue table"
// @Param request body CreateRecordRequest true "Record"
// @Success 201 {object} utils.APIResponse{data=inventory.StoredRecord}
// @Failure 400 {object} utils.APIResponse
// @Router /data/{table} [post]
func (h *InventoryHandler) CreateRecord(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRecordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		rec, err := h.service.CreateRecord(c.Request.Context(), table, req.LegacyKey, req.Payload)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusCreated, "record created", rec)
	}
}

// UpdateRecord replaces a catalogue record's payload
// @Summary Update catalogue record
// @Tags Inventory
// @Accept json
// @Produce json
// @Param table path string true "Catalogue table"
// @Param id path string true "Record ID"
// @Param request body UpdateRecordRequest true "New payload"
// @Success 200 {object} utils.APIResponse{data=inventory.StoredRecord}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /data/{table}/{id} [put]
func (h *InventoryHandler) UpdateRecord(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateRecordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		rec, err := h.service.UpdateRecord(c.Request.Context(), table, c.Param("id"), req.Payload)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "record updated", rec)
	}
}

// DeleteRecord removes a catalogue record
// @Summary Delete catalogue record
// @Tags Inventory
// @Param table path string true "Catalogue table"
// @Param id path string true "Record ID"
// @Success 204
// @Failure 404 {object} utils.APIResponse
// @Router /data/{table}/{id} [delete]
func (h *InventoryHandler) DeleteRecord(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.service.DeleteRecord(c.Request.Context(), table, c.Param("id")); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.NoContentResponse(c)
	}
}

// ListSales lists the sales history
// @Summary List sales
// @Description List every recorded sale, newest first
// @Tags Sales
// @Produce json
// @Success 200 {object} utils.APIResponse{data=utils.ItemsResponse{items=[]inventory.Sale}}
// @Failure 403 {object} utils.APIResponse
// @Router /sales [get]
func (h *InventoryHandler) ListSales(c *gin.Context) {
	sales, err := h.service.ListSales(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list sales", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ItemsSuccessResponse(c, sales, len(sales))
}

// GetSale returns one sale by receipt number
// @Summary Get sale
// @Tags Sales
// @Produce json
// @Param receipt path string true "Receipt number"
// @Success 200 {object} utils.APIResponse{data=inventory.Sale}
// @Failure 404 {object} utils.APIResponse
// @Router /sales/{receipt} [get]
func (h *InventoryHandler) GetSale(c *gin.Context) {
	sale, err := h.service.GetSale(c.Request.Context(), c.Param("receipt"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", sale)
}

// RecordSale stores a completed checkout
// @Summary Record sale
// @Tags Sales
// @Accept json
// @Produce json
// @Param request body inventory.Sale true "Sale"
// @Success 201 {object} utils.APIResponse{data=inventory.Sale}
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /sales [post]
func (h *InventoryHandler) RecordSale(c *gin.Context) {
	var sale inventory.Sale
	if err := c.ShouldBindJSON(&sale); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.service.RecordSale(c.Request.Context(), sale)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "sale recorded", saved)
}

// UpdateSale replaces a sale
// @Summary Update sale
// @Tags Sales
// @Accept json
// @Produce json
// @Param receipt path string true "Receipt number"
// @Param request body inventory.Sale true "Sale"
// @Success 200 {object} utils.APIResponse{data=inventory.Sale}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /sales/{receipt} [put]
func (h *InventoryHandler) UpdateSale(c *gin.Context) {
	var sale inventory.Sale
	if err := c.ShouldBindJSON(&sale); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.service.UpdateSale(c.Request.Context(), c.Param("receipt"), sale)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "sale updated", updated)
}

// DeleteSale removes a sale
// @Summary Delete sale
// @Tags Sales
// @Param receipt path string true "Receipt number"
// @Success 204
// @Failure 404 {object} utils.APIResponse
// @Router /sales/{receipt} [delete]
func (h *InventoryHandler) DeleteSale(c *gin.Context) {
	if err := h.service.DeleteSale(c.Request.Context(), c.Param("receipt")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

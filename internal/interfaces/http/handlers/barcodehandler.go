package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/domain/product"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

type BarcodeHandler struct{}

func NewBarcodeHandler() *BarcodeHandler {
	return &BarcodeHandler{}
}

type BarcodeRequest struct {
	Barcode string `json:"barcode"`
}

// Validate cleans a manually typed barcode. Invalid input answers 422 with
// the cleaned value so the UI can show it back.
// @Summary Validate barcode
// @Tags Station
// @Accept json
// @Produce json
// @Param request body BarcodeRequest true "Barcode"
// @Success 200 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Router /barcodes/validate [post]
func (h *BarcodeHandler) Validate(c *gin.Context) {
	var req BarcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	code, err := product.ValidateBarcode(req.Barcode)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, utils.APIResponse{
			Success: false,
			Data:    gin.H{"barcode": code},
			Error:   &utils.ErrorInfo{Type: "validation_error", Message: err.Error()},
		})
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"barcode": code})
}

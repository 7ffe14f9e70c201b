package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	importDto "github.com/storedesk/storedesk/internal/application/importer/dto"
	"github.com/storedesk/storedesk/internal/shared/logger"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

var _ = importDto.ImportSummary{} // ensure import is used for swagger

type ImportHandler struct {
	importer snapshotImporter
	logger   logger.Interface
}

func NewImportHandler(importer snapshotImporter, log logger.Interface) *ImportHandler {
	return &ImportHandler{importer: importer, logger: log}
}

// Check lists the datasets waiting in the local snapshot.
// @Summary Check local snapshot
// @Tags Import
// @Produce json
// @Success 200 {object} utils.APIResponse{data=utils.ItemsResponse{items=[]importDto.DatasetPresence}}
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /import [get]
func (h *ImportHandler) Check(c *gin.Context) {
	present, err := h.importer.Check(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ItemsSuccessResponse(c, present, len(present))
}

// Run copies the local snapshot into the shared store. A partial import
// still answers 200; the summary carries the per-dataset outcome.
// @Summary Import local snapshot
// @Tags Import
// @Produce json
// @Success 200 {object} utils.APIResponse{data=importDto.ImportSummary}
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /import/run [post]
func (h *ImportHandler) Run(c *gin.Context) {
	summary, err := h.importer.ImportAll(c.Request.Context())
	if err != nil {
		h.logger.Errorw("snapshot import failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, summary.Summary, summary)
}

// Clear removes the local snapshot
// @Summary Clear local snapshot
// @Tags Import
// @Success 204
// @Failure 403 {object} utils.APIResponse
// @Router /import/local [delete]
func (h *ImportHandler) Clear(c *gin.Context) {
	if err := h.importer.ClearLocal(c.Request.Context()); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

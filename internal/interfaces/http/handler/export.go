package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qbic/datamanager/internal/application/export"
)

// ExportHandler serves RO-Crate exports of projects
type ExportHandler struct {
	BaseHandler
	exports *export.Service
}

// NewExportHandler creates an export handler
func NewExportHandler(exports *export.Service) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ROCrate godoc
// @Summary      Export project as RO-Crate
// @Description  Zip archive with ro-crate-metadata.json, a YAML summary and optionally a PDF summary. Signposting links are sent in the Link header.
// @Tags         export
// @Produce      application/zip
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/export/ro-crate [get]
func (h *ExportHandler) ROCrate(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	archive, err := h.exports.ExportProject(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Link", h.exports.LinkHeader(projectID))
	c.Header("Content-Disposition", attachment(archive.FileName))
	c.Data(http.StatusOK, export.ArchiveContentType, archive.Data)
}

// Links godoc
// @Summary      Signposting links of a project
// @Description  Answers with the Link header only
// @Tags         export
// @Param        id path string true "Project ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/export/ro-crate [head]
func (h *ExportHandler) Links(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	c.Header("Link", h.exports.LinkHeader(projectID))
	c.Status(http.StatusNoContent)
}

package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	measurementapp "github.com/qbic/datamanager/internal/application/measurement"
	"github.com/qbic/datamanager/internal/interfaces/http/dto"
)

// MeasurementHandler handles genomics and proteomics measurements
type MeasurementHandler struct {
	BaseHandler
	measurements *measurementapp.MeasurementService
}

// NewMeasurementHandler creates a measurement handler
func NewMeasurementHandler(measurements *measurementapp.MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{measurements: measurements}
}

// RegisterNGS godoc
// @Summary      Register genomics measurements
// @Description  Rows are validated first; nothing is stored when one row fails
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body measurementapp.RegisterNGSRequest true "Rows"
// @Success      201 {object} dto.Response{data=[]measurementapp.MeasurementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/measurements/ngs [post]
func (h *MeasurementHandler) RegisterNGS(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req measurementapp.RegisterNGSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	out, err := h.measurements.RegisterNGS(c.Request.Context(), projectID, req.Rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, out)
}

// RegisterPxP godoc
// @Summary      Register proteomics measurements
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body measurementapp.RegisterPxPRequest true "Rows"
// @Success      201 {object} dto.Response{data=[]measurementapp.MeasurementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/measurements/pxp [post]
func (h *MeasurementHandler) RegisterPxP(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req measurementapp.RegisterPxPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	out, err := h.measurements.RegisterPxP(c.Request.Context(), projectID, req.Rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, out)
}

// UpdateNGS godoc
// @Summary      Update genomics measurements
// @Description  Rows reference measurements by their code
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body measurementapp.RegisterNGSRequest true "Rows"
// @Success      200 {object} dto.Response{data=[]measurementapp.MeasurementResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/measurements/ngs [put]
func (h *MeasurementHandler) UpdateNGS(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req measurementapp.RegisterNGSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	out, err := h.measurements.UpdateNGS(c.Request.Context(), projectID, req.Rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// UpdatePxP godoc
// @Summary      Update proteomics measurements
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body measurementapp.RegisterPxPRequest true "Rows"
// @Success      200 {object} dto.Response{data=[]measurementapp.MeasurementResponse}
// @Security     BearerAuth
// @Router       /projects/{id}/measurements/pxp [put]
func (h *MeasurementHandler) UpdatePxP(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req measurementapp.RegisterPxPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	out, err := h.measurements.UpdatePxP(c.Request.Context(), projectID, req.Rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// ValidateNGS godoc
// @Summary      Validate genomics rows
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body measurementapp.RegisterNGSRequest true "Rows"
// @Success      200 {object} dto.Response{data=measurementapp.ValidationResponse}
// @Security     BearerAuth
// @Router       /projects/{id}/measurements/ngs/validate [post]
func (h *MeasurementHandler) ValidateNGS(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req measurementapp.RegisterNGSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.measurements.ValidateNGS(c.Request.Context(), projectID, req.Rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, measurementapp.ToValidationResponse(result))
}

// ValidatePxP godoc
// @Summary      Validate proteomics rows
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body measurementapp.RegisterPxPRequest true "Rows"
// @Success      200 {object} dto.Response{data=measurementapp.ValidationResponse}
// @Security     BearerAuth
// @Router       /projects/{id}/measurements/pxp/validate [post]
func (h *MeasurementHandler) ValidatePxP(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req measurementapp.RegisterPxPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.measurements.ValidatePxP(c.Request.Context(), projectID, req.Rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, measurementapp.ToValidationResponse(result))
}

// Import godoc
// @Summary      Import measurement sheet
// @Description  Upload a tab separated sheet, either as multipart field "file" or as the raw body. The domain is inferred from the header.
// @Tags         measurements
// @Accept       text/tab-separated-values
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        file formData file false "Sheet"
// @Success      201 {object} dto.Response{data=measurementapp.ImportResponse}
// @Failure      400 {object} dto.Response{data=dto.SheetErrorResponse,error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/measurements/import [post]
func (h *MeasurementHandler) Import(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			h.BadRequest(c, "Missing file field")
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.BadRequest(c, "Could not read the uploaded file")
			return
		}
		defer f.Close()
		body = f
	}
	out, err := h.measurements.Import(c.Request.Context(), projectID, body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, out)
}

// List godoc
// @Summary      List measurements
// @Tags         measurements
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        kind query string false "ngs or pxp, both when empty" Enums(ngs, pxp)
// @Param        search query string false "Search term"
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Page size" default(50)
// @Success      200 {object} dto.Response{data=[]measurementapp.MeasurementResponse}
// @Security     BearerAuth
// @Router       /projects/{id}/measurements [get]
func (h *MeasurementHandler) List(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	filter := req.ToFilter()
	ctx := c.Request.Context()
	kind := c.Query("kind")
	if kind != "" && kind != measurementapp.KindNGS && kind != measurementapp.KindPxP {
		h.BadRequest(c, "kind must be ngs or pxp")
		return
	}

	out := make([]measurementapp.MeasurementResponse, 0)
	if kind == "" || kind == measurementapp.KindNGS {
		ngs, err := h.measurements.ListNGS(ctx, projectID, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		out = append(out, ngs...)
	}
	if kind == "" || kind == measurementapp.KindPxP {
		pxp, err := h.measurements.ListPxP(ctx, projectID, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		out = append(out, pxp...)
	}
	h.Success(c, out)
}

// Delete godoc
// @Summary      Delete measurements
// @Tags         measurements
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body measurementapp.DeleteRequest true "Measurement IDs"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/measurements [delete]
func (h *MeasurementHandler) Delete(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req measurementapp.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.measurements.Delete(c.Request.Context(), projectID, req.IDs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	sampleapp "github.com/qbic/datamanager/internal/application/sample"
	"github.com/qbic/datamanager/internal/interfaces/http/dto"
)

// SampleHandler handles samples, batches and quality control files
type SampleHandler struct {
	BaseHandler
	samples        *sampleapp.SampleService
	qualityControl *sampleapp.QualityControlService
}

// NewSampleHandler creates a sample handler
func NewSampleHandler(samples *sampleapp.SampleService, qualityControl *sampleapp.QualityControlService) *SampleHandler {
	return &SampleHandler{samples: samples, qualityControl: qualityControl}
}

// UpdateSamplesRequest updates samples of a batch by sample code
type UpdateSamplesRequest struct {
	Samples []sampleapp.SampleMetadata `json:"samples" binding:"required,min=1"`
}

// ValidateSamplesRequest validates sample sheet rows
type ValidateSamplesRequest struct {
	Samples []sampleapp.SampleMetadata `json:"samples" binding:"required,min=1"`
	// Existing validates rows of already registered samples
	Existing bool `json:"existing"`
}

// DeleteSamplesRequest deletes samples by id
type DeleteSamplesRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// RegisterBatch godoc
// @Summary      Register batch
// @Description  Register a batch with its samples. Sample codes are assigned in row order.
// @Tags         samples
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body sampleapp.RegisterBatchRequest true "Batch"
// @Success      201 {object} dto.Response{data=sampleapp.RegisteredBatch}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/batches [post]
func (h *SampleHandler) RegisterBatch(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req sampleapp.RegisterBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	registered, err := h.samples.RegisterSamples(c.Request.Context(), projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, registered)
}

// ListBatches godoc
// @Summary      List batches
// @Tags         samples
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]sampleapp.BatchResponse}
// @Security     BearerAuth
// @Router       /projects/{id}/batches [get]
func (h *SampleHandler) ListBatches(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	batches, err := h.samples.ListBatches(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// EditBatch godoc
// @Summary      Edit batch
// @Description  Rename the batch and create, edit or delete its samples
// @Tags         samples
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        bid path string true "Batch ID" format(uuid)
// @Param        request body sampleapp.EditBatchRequest true "Changes"
// @Success      204
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/batches/{bid} [put]
func (h *SampleHandler) EditBatch(c *gin.Context) {
	projectID, batchID, ok := h.batchPath(c)
	if !ok {
		return
	}
	var req sampleapp.EditBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.samples.EditBatch(c.Request.Context(), projectID, batchID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateSamples godoc
// @Summary      Update samples of a batch
// @Tags         samples
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        bid path string true "Batch ID" format(uuid)
// @Param        request body UpdateSamplesRequest true "Rows"
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/batches/{bid}/samples [put]
func (h *SampleHandler) UpdateSamples(c *gin.Context) {
	projectID, batchID, ok := h.batchPath(c)
	if !ok {
		return
	}
	var req UpdateSamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.samples.UpdateSamples(c.Request.Context(), projectID, batchID, req.Samples); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteBatch godoc
// @Summary      Delete batch
// @Description  Delete a batch and its samples. Rejected while measurements reference them.
// @Tags         samples
// @Param        id path string true "Project ID" format(uuid)
// @Param        bid path string true "Batch ID" format(uuid)
// @Success      204
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/batches/{bid} [delete]
func (h *SampleHandler) DeleteBatch(c *gin.Context) {
	projectID, batchID, ok := h.batchPath(c)
	if !ok {
		return
	}
	if err := h.samples.DeleteBatch(c.Request.Context(), projectID, batchID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListSamples godoc
// @Summary      List samples
// @Tags         samples
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        search query string false "Search in code and label"
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Page size" default(50)
// @Param        sort query string false "Sort field, prefix with - for descending"
// @Success      200 {object} dto.Response{data=[]sampleapp.SampleResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /projects/{id}/samples [get]
func (h *SampleHandler) ListSamples(c *gin.Context) {
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
	page, err := h.samples.ListSamples(c.Request.Context(), projectID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Offset, page.Limit)
}

// GetSample godoc
// @Summary      Get sample
// @Tags         samples
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        sid path string true "Sample ID" format(uuid)
// @Success      200 {object} dto.Response{data=sampleapp.SampleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/samples/{sid} [get]
func (h *SampleHandler) GetSample(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	sampleID, ok := h.pathUUID(c, "sid")
	if !ok {
		return
	}
	s, err := h.samples.GetSample(c.Request.Context(), projectID, sampleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// DeleteSamples godoc
// @Summary      Delete samples
// @Description  Rejected while measurements reference a sample
// @Tags         samples
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body DeleteSamplesRequest true "Sample IDs"
// @Success      204
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/samples [delete]
func (h *SampleHandler) DeleteSamples(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req DeleteSamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.samples.DeleteSamples(c.Request.Context(), projectID, req.IDs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ValidateSamples godoc
// @Summary      Validate sample sheet
// @Description  Check rows without registering them
// @Tags         samples
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body ValidateSamplesRequest true "Rows"
// @Success      200 {object} dto.Response{data=sample.ValidationResult}
// @Security     BearerAuth
// @Router       /projects/{id}/samples/validate [post]
func (h *SampleHandler) ValidateSamples(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req ValidateSamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.samples.Validate(c.Request.Context(), projectID, req.Samples, req.Existing)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UploadQualityControl godoc
// @Summary      Upload quality control files
// @Description  Multipart upload of one or more files, optionally linked to an experiment
// @Tags         quality-control
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        files formData file true "Files"
// @Param        experiment_id formData string false "Experiment ID" format(uuid)
// @Success      201 {object} dto.Response{data=[]sampleapp.QualityControlResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/qc [post]
func (h *SampleHandler) UploadQualityControl(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		h.BadRequest(c, "Expected a multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		h.BadRequest(c, "No files uploaded")
		return
	}
	var experimentID *uuid.UUID
	if raw := c.PostForm("experiment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid experiment id")
			return
		}
		experimentID = &id
	}

	uploads := make([]sampleapp.QualityControlUpload, 0, len(files))
	for _, fh := range files {
		content, err := readFormFile(fh)
		if err != nil {
			h.BadRequest(c, "Could not read "+fh.Filename)
			return
		}
		uploads = append(uploads, sampleapp.QualityControlUpload{
			FileName:     fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			ExperimentID: experimentID,
			Content:      content,
		})
	}
	created, err := h.qualityControl.AddQualityControls(c.Request.Context(), projectID, uploads)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// ListQualityControl godoc
// @Summary      List quality control files
// @Tags         quality-control
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]sampleapp.QualityControlResponse}
// @Security     BearerAuth
// @Router       /projects/{id}/qc [get]
func (h *SampleHandler) ListQualityControl(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	list, err := h.qualityControl.List(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// GetQualityControl godoc
// @Summary      Get quality control file
// @Description  Returns the record with a presigned download URL
// @Tags         quality-control
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        qid path string true "Quality control ID" format(uuid)
// @Param        expiry query int false "URL validity in minutes" default(60)
// @Success      200 {object} dto.Response{data=sampleapp.QualityControlResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/qc/{qid} [get]
func (h *SampleHandler) GetQualityControl(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "qid")
	if !ok {
		return
	}
	var expiry time.Duration
	if raw := c.Query("expiry"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 || minutes > 7*24*60 {
			h.BadRequest(c, "expiry must be between 1 and 10080 minutes")
			return
		}
		expiry = time.Duration(minutes) * time.Minute
	}
	qc, err := h.qualityControl.Get(c.Request.Context(), projectID, id, expiry)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, qc)
}

// DownloadQualityControl godoc
// @Summary      Download quality control file
// @Tags         quality-control
// @Produce      octet-stream
// @Param        id path string true "Project ID" format(uuid)
// @Param        qid path string true "Quality control ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/qc/{qid}/content [get]
func (h *SampleHandler) DownloadQualityControl(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "qid")
	if !ok {
		return
	}
	qc, data, err := h.qualityControl.Content(c.Request.Context(), projectID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(qc.FileName))
	c.Data(http.StatusOK, qc.ContentType, data)
}

// DeleteQualityControl godoc
// @Summary      Delete quality control file
// @Tags         quality-control
// @Param        id path string true "Project ID" format(uuid)
// @Param        qid path string true "Quality control ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/qc/{qid} [delete]
func (h *SampleHandler) DeleteQualityControl(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "qid")
	if !ok {
		return
	}
	if err := h.qualityControl.Delete(c.Request.Context(), projectID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *SampleHandler) batchPath(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	projectID, ok := h.projectID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	batchID, ok := h.pathUUID(c, "bid")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return projectID, batchID, true
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

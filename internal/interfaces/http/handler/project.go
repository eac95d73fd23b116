package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/application/export"
	projectapp "github.com/qbic/datamanager/internal/application/project"
	"github.com/qbic/datamanager/internal/infrastructure/scheduler"
	"github.com/qbic/datamanager/internal/infrastructure/signposting"
	"github.com/qbic/datamanager/internal/interfaces/http/dto"
)

// ProjectHandler handles project requests
type ProjectHandler struct {
	BaseHandler
	projects *projectapp.ProjectService
	requests *projectapp.AsyncProjectService
	baseURL  string
}

// NewProjectHandler creates a project handler. baseURL is used for the
// signposting links of project responses.
func NewProjectHandler(projects *projectapp.ProjectService, requests *projectapp.AsyncProjectService, baseURL string) *ProjectHandler {
	return &ProjectHandler{projects: projects, requests: requests, baseURL: baseURL}
}

// UpdateTitleRequest sets a project title
type UpdateTitleRequest struct {
	Title string `json:"title" binding:"required,max=150"`
}

// UpdateObjectiveRequest sets a project objective
type UpdateObjectiveRequest struct {
	Objective string `json:"objective" binding:"required,max=2000"`
}

// CodeUniqueResponse tells whether a project code is still free
type CodeUniqueResponse struct {
	Code   string `json:"code"`
	Unique bool   `json:"unique"`
}

// RequestSubmittedResponse carries the id to poll a queued request with
type RequestSubmittedResponse struct {
	RequestID string `json:"request_id"`
}

func (h *ProjectHandler) setLinks(c *gin.Context, id uuid.UUID) {
	c.Header("Link", signposting.Format(export.ProjectLinks(h.baseURL, id)...))
}

// Create godoc
// @Summary      Create project
// @Description  Create a project, optionally from an offer and with a first experiment. The creator gets all permissions.
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body projectapp.CreateProjectRequest true "Project"
// @Success      201 {object} dto.Response{data=projectapp.ProjectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req projectapp.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	created, err := h.projects.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setLinks(c, created.ID)
	h.Created(c, created)
}

// List godoc
// @Summary      Project overview
// @Description  List the projects the caller can read
// @Tags         projects
// @Produce      json
// @Param        search query string false "Search term"
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Page size" default(50) maximum(500)
// @Param        sort query string false "Sort field, prefix with - for descending" example(-last_modified)
// @Success      200 {object} dto.Response{data=[]project.Overview,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	subject, ok := h.subject(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	filter := req.ToFilter()
	page, err := h.projects.Overview(c.Request.Context(), subject, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Offset, page.Limit)
}

// Get godoc
// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=projectapp.ProjectResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setLinks(c, id)
	h.Success(c, p)
}

// IsCodeUnique godoc
// @Summary      Check project code
// @Description  Tell whether a project code is free. Malformed codes are rejected.
// @Tags         projects
// @Produce      json
// @Param        code path string true "Project code" example(Q2ABCD)
// @Success      200 {object} dto.Response{data=CodeUniqueResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/codes/{code}/unique [get]
func (h *ProjectHandler) IsCodeUnique(c *gin.Context) {
	code := c.Param("code")
	unique, err := h.projects.IsCodeUnique(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CodeUniqueResponse{Code: code, Unique: unique})
}

// UpdateTitle godoc
// @Summary      Update project title
// @Tags         projects
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body UpdateTitleRequest true "Title"
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/title [put]
func (h *ProjectHandler) UpdateTitle(c *gin.Context) {
	var req UpdateTitleRequest
	h.update(c, &req, func(id uuid.UUID) error {
		return h.projects.UpdateTitle(c.Request.Context(), id, req.Title)
	})
}

// UpdateObjective godoc
// @Summary      Update project objective
// @Tags         projects
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body UpdateObjectiveRequest true "Objective"
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/objective [put]
func (h *ProjectHandler) UpdateObjective(c *gin.Context) {
	var req UpdateObjectiveRequest
	h.update(c, &req, func(id uuid.UUID) error {
		return h.projects.UpdateObjective(c.Request.Context(), id, req.Objective)
	})
}

// SetManager godoc
// @Summary      Set project manager
// @Tags         projects
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body projectapp.ContactInput true "Contact"
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/manager [put]
func (h *ProjectHandler) SetManager(c *gin.Context) {
	var req projectapp.ContactInput
	h.update(c, &req, func(id uuid.UUID) error {
		return h.projects.SetManager(c.Request.Context(), id, req)
	})
}

// SetInvestigator godoc
// @Summary      Set principal investigator
// @Tags         projects
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body projectapp.ContactInput true "Contact"
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/investigator [put]
func (h *ProjectHandler) SetInvestigator(c *gin.Context) {
	var req projectapp.ContactInput
	h.update(c, &req, func(id uuid.UUID) error {
		return h.projects.SetInvestigator(c.Request.Context(), id, req)
	})
}

// SetResponsible godoc
// @Summary      Set responsible person
// @Tags         projects
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body projectapp.ContactInput true "Contact"
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/responsible [put]
func (h *ProjectHandler) SetResponsible(c *gin.Context) {
	var req projectapp.ContactInput
	h.update(c, &req, func(id uuid.UUID) error {
		return h.projects.SetResponsible(c.Request.Context(), id, req)
	})
}

// RemoveResponsible godoc
// @Summary      Remove responsible person
// @Tags         projects
// @Param        id path string true "Project ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/responsible [delete]
func (h *ProjectHandler) RemoveResponsible(c *gin.Context) {
	h.command(c, func(id uuid.UUID) error {
		return h.projects.RemoveResponsible(c.Request.Context(), id)
	})
}

// SetFunding godoc
// @Summary      Set funding
// @Tags         projects
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body projectapp.FundingInput true "Funding"
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/funding [put]
func (h *ProjectHandler) SetFunding(c *gin.Context) {
	var req projectapp.FundingInput
	h.update(c, &req, func(id uuid.UUID) error {
		return h.projects.SetFunding(c.Request.Context(), id, req)
	})
}

// RemoveFunding godoc
// @Summary      Remove funding
// @Tags         projects
// @Param        id path string true "Project ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/funding [delete]
func (h *ProjectHandler) RemoveFunding(c *gin.Context) {
	h.command(c, func(id uuid.UUID) error {
		return h.projects.RemoveFunding(c.Request.Context(), id)
	})
}

// LinkOffer godoc
// @Summary      Link offer
// @Tags         projects
// @Param        id path string true "Project ID" format(uuid)
// @Param        code path string true "Offer code"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/offers/{code} [post]
func (h *ProjectHandler) LinkOffer(c *gin.Context) {
	h.command(c, func(id uuid.UUID) error {
		return h.projects.LinkOffer(c.Request.Context(), id, c.Param("code"))
	})
}

// UnlinkOffer godoc
// @Summary      Unlink offer
// @Tags         projects
// @Param        id path string true "Project ID" format(uuid)
// @Param        code path string true "Offer code"
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/offers/{code} [delete]
func (h *ProjectHandler) UnlinkOffer(c *gin.Context) {
	h.command(c, func(id uuid.UUID) error {
		return h.projects.UnlinkOffer(c.Request.Context(), id, c.Param("code"))
	})
}

// SubmitRequest godoc
// @Summary      Submit update request
// @Description  Queue a project or experiment update. The body kind selects the change; poll the returned id for the outcome.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        request body projectapp.RawRequest true "Request"
// @Success      202 {object} dto.Response{data=RequestSubmittedResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/requests [post]
func (h *ProjectHandler) SubmitRequest(c *gin.Context) {
	subject, ok := h.subject(c)
	if !ok {
		return
	}
	var raw projectapp.RawRequest
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.BindError(c, err)
		return
	}
	if raw.RequestID == "" {
		raw.RequestID = c.GetHeader("Idempotency-Key")
	}
	id, err := h.requests.Submit(subject, raw)
	if scheduler.IsBusy(err) {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Request queue is not accepting requests, try again later")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, RequestSubmittedResponse{RequestID: id})
}

// RequestStatus godoc
// @Summary      Request status
// @Tags         requests
// @Produce      json
// @Param        requestId path string true "Request ID"
// @Success      200 {object} dto.Response{data=projectapp.RequestStatus}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/requests/{requestId} [get]
func (h *ProjectHandler) RequestStatus(c *gin.Context) {
	subject, ok := h.subject(c)
	if !ok {
		return
	}
	status, err := h.requests.Status(subject, c.Param("requestId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// CreateFromRequest godoc
// @Summary      Create project from design
// @Description  Create a project from its design, contacts and funding in one call
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        request body projectapp.ProjectCreationRequest true "Project"
// @Success      201 {object} dto.Response{data=projectapp.ProjectCreationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/requests/creation [post]
func (h *ProjectHandler) CreateFromRequest(c *gin.Context) {
	subject, ok := h.subject(c)
	if !ok {
		return
	}
	var req projectapp.ProjectCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	created, err := h.requests.Create(c.Request.Context(), subject, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// update binds the body into req and runs apply on the authorized project
func (h *ProjectHandler) update(c *gin.Context, req any, apply func(uuid.UUID) error) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	if err := c.ShouldBindJSON(req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := apply(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ProjectHandler) command(c *gin.Context, apply func(uuid.UUID) error) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	if err := apply(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

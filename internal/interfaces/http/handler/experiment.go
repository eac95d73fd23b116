package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	projectapp "github.com/qbic/datamanager/internal/application/project"
	"github.com/qbic/datamanager/internal/domain/experiment"
)

// ExperimentHandler handles experiments and their designs
type ExperimentHandler struct {
	BaseHandler
	experiments *projectapp.ExperimentService
}

// NewExperimentHandler creates an experiment handler
func NewExperimentHandler(experiments *projectapp.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{experiments: experiments}
}

// ConfoundingVariableRequest names a confounding variable
type ConfoundingVariableRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// ConfoundingLevelsRequest sets confounding values of samples
type ConfoundingLevelsRequest struct {
	Levels []projectapp.ConfoundingLevelInput `json:"levels" binding:"required,dive"`
}

// ProjectOfExperiment resolves the project of the :eid experiment for
// permission checks
func (h *ExperimentHandler) ProjectOfExperiment(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("eid"))
	if err != nil {
		return uuid.Nil, err
	}
	exp, err := h.experiments.Find(c.Request.Context(), id)
	if err != nil {
		return uuid.Nil, err
	}
	return exp.ProjectID, nil
}

// Create godoc
// @Summary      Create experiment
// @Tags         experiments
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body projectapp.ExperimentDescription true "Experiment"
// @Success      201 {object} dto.Response{data=projectapp.ExperimentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/experiments [post]
func (h *ExperimentHandler) Create(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req projectapp.ExperimentDescription
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	created, err := h.experiments.Create(c.Request.Context(), projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// List godoc
// @Summary      List experiments of a project
// @Tags         experiments
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]projectapp.ExperimentResponse}
// @Security     BearerAuth
// @Router       /projects/{id}/experiments [get]
func (h *ExperimentHandler) List(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	list, err := h.experiments.List(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Get godoc
// @Summary      Get experiment
// @Tags         experiments
// @Produce      json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Success      200 {object} dto.Response{data=projectapp.ExperimentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /experiments/{eid} [get]
func (h *ExperimentHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "eid")
	if !ok {
		return
	}
	exp, err := h.experiments.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, exp)
}

// UpdateDescription godoc
// @Summary      Update experiment description
// @Description  Replace name, species, specimens and analytes
// @Tags         experiments
// @Accept       json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        request body projectapp.ExperimentDescription true "Description"
// @Success      204
// @Security     BearerAuth
// @Router       /experiments/{eid} [put]
func (h *ExperimentHandler) UpdateDescription(c *gin.Context) {
	var req projectapp.ExperimentDescription
	h.update(c, &req, func(id uuid.UUID) error {
		return h.experiments.UpdateDescription(c.Request.Context(), id, req)
	})
}

// AddVariables godoc
// @Summary      Add experimental variables
// @Description  Rejected once groups are defined
// @Tags         experiments
// @Accept       json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        request body []projectapp.VariableInput true "Variables"
// @Success      204
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /experiments/{eid}/variables [post]
func (h *ExperimentHandler) AddVariables(c *gin.Context) {
	var req []projectapp.VariableInput
	h.update(c, &req, func(id uuid.UUID) error {
		return h.experiments.AddVariables(c.Request.Context(), id, req)
	})
}

// UpdateVariable godoc
// @Summary      Update experimental variable
// @Description  Rename the variable or change its levels
// @Tags         experiments
// @Accept       json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        name path string true "Variable name"
// @Param        request body projectapp.VariableInput true "Variable"
// @Success      204
// @Security     BearerAuth
// @Router       /experiments/{eid}/variables/{name} [put]
func (h *ExperimentHandler) UpdateVariable(c *gin.Context) {
	var req projectapp.VariableInput
	h.update(c, &req, func(id uuid.UUID) error {
		return h.experiments.UpdateVariable(c.Request.Context(), id, c.Param("name"), req)
	})
}

// DeleteVariable godoc
// @Summary      Delete experimental variable
// @Tags         experiments
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        name path string true "Variable name"
// @Success      204
// @Security     BearerAuth
// @Router       /experiments/{eid}/variables/{name} [delete]
func (h *ExperimentHandler) DeleteVariable(c *gin.Context) {
	h.command(c, func(id uuid.UUID) error {
		return h.experiments.DeleteVariable(c.Request.Context(), id, c.Param("name"))
	})
}

// DeleteAllVariables godoc
// @Summary      Delete all experimental variables
// @Tags         experiments
// @Param        eid path string true "Experiment ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /experiments/{eid}/variables [delete]
func (h *ExperimentHandler) DeleteAllVariables(c *gin.Context) {
	h.command(c, func(id uuid.UUID) error {
		return h.experiments.DeleteAllVariables(c.Request.Context(), id)
	})
}

// AddGroup godoc
// @Summary      Add experimental group
// @Tags         experiments
// @Accept       json
// @Produce      json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        request body projectapp.GroupInput true "Group"
// @Success      201 {object} dto.Response{data=experiment.Group}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /experiments/{eid}/groups [post]
func (h *ExperimentHandler) AddGroup(c *gin.Context) {
	id, ok := h.pathUUID(c, "eid")
	if !ok {
		return
	}
	var req projectapp.GroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	group, err := h.experiments.AddGroup(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, group)
}

// UpdateGroup godoc
// @Summary      Update experimental group
// @Tags         experiments
// @Accept       json
// @Produce      json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        gid path string true "Group ID" format(uuid)
// @Param        request body projectapp.GroupInput true "Group"
// @Success      200 {object} dto.Response{data=experiment.Group}
// @Security     BearerAuth
// @Router       /experiments/{eid}/groups/{gid} [put]
func (h *ExperimentHandler) UpdateGroup(c *gin.Context) {
	id, ok := h.pathUUID(c, "eid")
	if !ok {
		return
	}
	groupID, ok := h.pathUUID(c, "gid")
	if !ok {
		return
	}
	var req projectapp.GroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	group, err := h.experiments.UpdateGroup(c.Request.Context(), id, groupID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// DeleteGroup godoc
// @Summary      Delete experimental group
// @Description  Rejected while samples are registered for the group
// @Tags         experiments
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        gid path string true "Group ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /experiments/{eid}/groups/{gid} [delete]
func (h *ExperimentHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := h.pathUUID(c, "gid")
	if !ok {
		return
	}
	h.command(c, func(id uuid.UUID) error {
		return h.experiments.DeleteGroup(c.Request.Context(), id, groupID)
	})
}

// CreateConfoundingVariable godoc
// @Summary      Create confounding variable
// @Tags         experiments
// @Accept       json
// @Produce      json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        request body ConfoundingVariableRequest true "Variable"
// @Success      201 {object} dto.Response{data=experiment.ConfoundingVariable}
// @Security     BearerAuth
// @Router       /experiments/{eid}/confounding [post]
func (h *ExperimentHandler) CreateConfoundingVariable(c *gin.Context) {
	id, ok := h.pathUUID(c, "eid")
	if !ok {
		return
	}
	var req ConfoundingVariableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	variable, err := h.experiments.CreateConfoundingVariable(c.Request.Context(), id, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, variable)
}

// ListConfoundingVariables godoc
// @Summary      List confounding variables
// @Tags         experiments
// @Produce      json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]experiment.ConfoundingVariable}
// @Security     BearerAuth
// @Router       /experiments/{eid}/confounding [get]
func (h *ExperimentHandler) ListConfoundingVariables(c *gin.Context) {
	id, ok := h.pathUUID(c, "eid")
	if !ok {
		return
	}
	variables, err := h.experiments.ListConfoundingVariables(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variables)
}

// RenameConfoundingVariable godoc
// @Summary      Rename confounding variable
// @Tags         experiments
// @Accept       json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        vid path string true "Variable ID" format(uuid)
// @Param        request body ConfoundingVariableRequest true "Variable"
// @Success      204
// @Security     BearerAuth
// @Router       /experiments/{eid}/confounding/{vid} [put]
func (h *ExperimentHandler) RenameConfoundingVariable(c *gin.Context) {
	variableID, ok := h.pathUUID(c, "vid")
	if !ok {
		return
	}
	var req ConfoundingVariableRequest
	h.update(c, &req, func(id uuid.UUID) error {
		return h.experiments.RenameConfoundingVariable(c.Request.Context(), id, variableID, req.Name)
	})
}

// DeleteConfoundingVariable godoc
// @Summary      Delete confounding variable
// @Description  Also deletes the values recorded for samples
// @Tags         experiments
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        vid path string true "Variable ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /experiments/{eid}/confounding/{vid} [delete]
func (h *ExperimentHandler) DeleteConfoundingVariable(c *gin.Context) {
	variableID, ok := h.pathUUID(c, "vid")
	if !ok {
		return
	}
	h.command(c, func(id uuid.UUID) error {
		return h.experiments.DeleteConfoundingVariable(c.Request.Context(), id, variableID)
	})
}

// SetConfoundingLevels godoc
// @Summary      Record confounding values
// @Tags         experiments
// @Accept       json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        request body ConfoundingLevelsRequest true "Levels"
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /experiments/{eid}/confounding-levels [put]
func (h *ExperimentHandler) SetConfoundingLevels(c *gin.Context) {
	var req ConfoundingLevelsRequest
	h.update(c, &req, func(id uuid.UUID) error {
		levels := make([]experiment.ConfoundingLevel, 0, len(req.Levels))
		for _, l := range req.Levels {
			levels = append(levels, experiment.ConfoundingLevel{VariableID: l.VariableID, SampleID: l.SampleID, Value: l.Value})
		}
		return h.experiments.SetConfoundingLevels(c.Request.Context(), id, levels)
	})
}

// ListConfoundingLevels godoc
// @Summary      List confounding values
// @Description  Values of this experiment's confounding variables for the given samples
// @Tags         experiments
// @Produce      json
// @Param        eid path string true "Experiment ID" format(uuid)
// @Param        sample_id query []string true "Sample IDs" collectionFormat(multi)
// @Success      200 {object} dto.Response{data=[]experiment.ConfoundingLevel}
// @Security     BearerAuth
// @Router       /experiments/{eid}/confounding-levels [get]
func (h *ExperimentHandler) ListConfoundingLevels(c *gin.Context) {
	id, ok := h.pathUUID(c, "eid")
	if !ok {
		return
	}
	sampleIDs := make([]uuid.UUID, 0)
	for _, raw := range c.QueryArray("sample_id") {
		sampleID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid sample id: "+raw)
			return
		}
		sampleIDs = append(sampleIDs, sampleID)
	}

	ctx := c.Request.Context()
	variables, err := h.experiments.ListConfoundingVariables(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	levels, err := h.experiments.ListConfoundingLevels(ctx, sampleIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	own := make(map[uuid.UUID]bool, len(variables))
	for _, v := range variables {
		own[v.ID] = true
	}
	result := make([]experiment.ConfoundingLevel, 0, len(levels))
	for _, l := range levels {
		if own[l.VariableID] {
			result = append(result, l)
		}
	}
	h.Success(c, result)
}

func (h *ExperimentHandler) update(c *gin.Context, req any, apply func(uuid.UUID) error) {
	id, ok := h.pathUUID(c, "eid")
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

func (h *ExperimentHandler) command(c *gin.Context, apply func(uuid.UUID) error) {
	id, ok := h.pathUUID(c, "eid")
	if !ok {
		return
	}
	if err := apply(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

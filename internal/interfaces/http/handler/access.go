package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	accessapp "github.com/qbic/datamanager/internal/application/access"
	"github.com/qbic/datamanager/internal/domain/access"
)

// AccessHandler manages the access control list of projects
type AccessHandler struct {
	BaseHandler
	access *accessapp.Service
}

// NewAccessHandler creates an access handler
func NewAccessHandler(access *accessapp.Service) *AccessHandler {
	return &AccessHandler{access: access}
}

// GrantRequest grants a permission to a user
type GrantRequest struct {
	UserID     uuid.UUID `json:"user_id" binding:"required"`
	Permission string    `json:"permission" binding:"required,oneof=READ WRITE ADMIN read write admin"`
}

// List godoc
// @Summary      List project access
// @Tags         access
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]access.Entry}
// @Security     BearerAuth
// @Router       /projects/{id}/access [get]
func (h *AccessHandler) List(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	entries, err := h.access.Entries(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Grant godoc
// @Summary      Grant project access
// @Description  Grant a permission to a user. Collaborators are notified by mail.
// @Tags         access
// @Accept       json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body GrantRequest true "Grant"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/access [post]
func (h *AccessHandler) Grant(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	permission, err := access.ParsePermission(req.Permission)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.access.Grant(c.Request.Context(), projectID, req.UserID, permission); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Revoke godoc
// @Summary      Revoke project access
// @Description  Revoke one permission, or all permissions when none is given
// @Tags         access
// @Param        id path string true "Project ID" format(uuid)
// @Param        userId path string true "User ID" format(uuid)
// @Param        permission query string false "Permission" Enums(READ, WRITE, ADMIN)
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/access/{userId} [delete]
func (h *AccessHandler) Revoke(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	userID, ok := h.pathUUID(c, "userId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	raw := c.Query("permission")
	if raw == "" {
		if err := h.access.DenyAll(ctx, projectID, userID); err != nil {
			h.HandleError(c, err)
			return
		}
		h.NoContent(c)
		return
	}
	permission, err := access.ParsePermission(raw)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.access.Deny(ctx, projectID, userID, permission); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

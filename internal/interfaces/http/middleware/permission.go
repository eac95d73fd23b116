package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/infrastructure/logger"
	"github.com/qbic/datamanager/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ProjectIDKey holds the project a request was authorized for
const ProjectIDKey = "project_id"

// PermissionChecker answers project access questions
type PermissionChecker interface {
	HasPermission(ctx context.Context, subject access.Subject, projectID uuid.UUID, permission access.Permission) (bool, error)
}

// ProjectResolver extracts the project a request targets
type ProjectResolver func(c *gin.Context) (uuid.UUID, error)

// ProjectFromParam reads the project id from a path parameter
func ProjectFromParam(name string) ProjectResolver {
	return func(c *gin.Context) (uuid.UUID, error) {
		return uuid.Parse(c.Param(name))
	}
}

// ProjectGuard checks ACL permissions on the project of a request
type ProjectGuard struct {
	checker PermissionChecker
	logger  *zap.Logger
}

// NewProjectGuard creates a guard backed by checker
func NewProjectGuard(checker PermissionChecker, logger *zap.Logger) *ProjectGuard {
	return &ProjectGuard{checker: checker, logger: logger}
}

// Require allows the request when the caller holds permission on the
// project in the :id path parameter
func (g *ProjectGuard) Require(permission access.Permission) gin.HandlerFunc {
	return g.RequireFor(permission, ProjectFromParam("id"))
}

// RequireFor allows the request when the caller holds permission on the
// project returned by resolve
func (g *ProjectGuard) RequireFor(permission access.Permission, resolve ProjectResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := GetSubject(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		projectID, err := resolve(c)
		if err != nil {
			abortWithError(c, http.StatusNotFound, dto.ErrCodeNotFound, "Project not found")
			return
		}
		allowed, err := g.checker.HasPermission(c.Request.Context(), subject, projectID, permission)
		if err != nil {
			g.logger.Error("Permission check failed",
				zap.String("project_id", projectID.String()),
				zap.String("user_id", subject.UserID.String()),
				zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
			return
		}
		if !allowed {
			g.logger.Debug("Project access denied",
				zap.String("project_id", projectID.String()),
				zap.String("user_id", subject.UserID.String()),
				zap.String("permission", string(permission)))
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "You do not have access to this project")
			return
		}
		c.Set(ProjectIDKey, projectID)
		c.Request = c.Request.WithContext(logger.WithProjectID(c.Request.Context(), projectID.String()))
		c.Next()
	}
}

// RequireAuthority allows callers holding authority, e.g. ROLE_ADMIN
func RequireAuthority(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(c.GetStringSlice(AuthoritiesKey), authority) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Insufficient privileges")
			return
		}
		c.Next()
	}
}

// GetProjectID returns the project authorized by ProjectGuard
func GetProjectID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ProjectIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

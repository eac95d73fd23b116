package router

import (
	"github.com/gin-gonic/gin"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/interfaces/http/handler"
	"github.com/qbic/datamanager/internal/interfaces/http/middleware"
)

// Handlers are the endpoint implementations of the API
type Handlers struct {
	Auth         *handler.AuthHandler
	Projects     *handler.ProjectHandler
	Experiments  *handler.ExperimentHandler
	Samples      *handler.SampleHandler
	Measurements *handler.MeasurementHandler
	Offers       *handler.OfferHandler
	Access       *handler.AccessHandler
	Lookups      *handler.LookupHandler
	Exports      *handler.ExportHandler
	System       *handler.SystemHandler
}

// Guards are the authorization middlewares of the API
type Guards struct {
	Projects *middleware.ProjectGuard
	// AuthRateLimit throttles the unauthenticated /auth endpoints, nil disables it
	AuthRateLimit gin.HandlerFunc
}

// PublicPaths lists the API paths reachable without credentials
func PublicPaths(basePath string) []string {
	return []string{
		basePath + "/auth/login",
		basePath + "/auth/refresh",
		basePath + "/auth/register",
		basePath + "/auth/password-reset",
		basePath + "/auth/password-reset/confirm",
		basePath + "/system/ping",
		basePath + "/system/info",
	}
}

// PublicPrefixes lists path prefixes reachable without credentials
func PublicPrefixes(basePath string) []string {
	return []string{basePath + "/auth/confirm/"}
}

// DataManagerRoutes builds the domain groups of the data manager API
func DataManagerRoutes(h Handlers, g Guards) []*DomainGroup {
	read := g.Projects.Require(access.PermissionRead)
	write := g.Projects.Require(access.PermissionWrite)
	admin := g.Projects.Require(access.PermissionAdmin)

	authRoutes := NewDomainGroup("/auth")
	if g.AuthRateLimit != nil {
		authRoutes.Use(g.AuthRateLimit)
	}
	authRoutes.POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.RefreshToken).
		POST("/logout", h.Auth.Logout).
		POST("/register", h.Auth.Register).
		POST("/confirm/:userId", h.Auth.ConfirmEmail).
		POST("/password-reset", h.Auth.RequestPasswordReset).
		POST("/password-reset/confirm", h.Auth.ResetPassword)

	userRoutes := NewDomainGroup("/users/me")
	userRoutes.GET("", h.Auth.Me).
		PUT("/password", h.Auth.ChangePassword).
		GET("/tokens", h.Auth.ListTokens).
		POST("/tokens", h.Auth.CreateToken).
		DELETE("/tokens/:tokenId", h.Auth.DeleteToken)

	projectRoutes := NewDomainGroup("/projects")
	projectRoutes.POST("", h.Projects.Create).
		GET("", h.Projects.List).
		GET("/codes/:code/unique", h.Projects.IsCodeUnique).
		POST("/requests", h.Projects.SubmitRequest).
		GET("/requests/:requestId", h.Projects.RequestStatus).
		POST("/requests/creation", h.Projects.CreateFromRequest)

	project := projectRoutes.Group("/:id")
	project.GET("", read, h.Projects.Get).
		PUT("/title", write, h.Projects.UpdateTitle).
		PUT("/objective", write, h.Projects.UpdateObjective).
		PUT("/manager", write, h.Projects.SetManager).
		PUT("/investigator", write, h.Projects.SetInvestigator).
		PUT("/responsible", write, h.Projects.SetResponsible).
		DELETE("/responsible", write, h.Projects.RemoveResponsible).
		PUT("/funding", write, h.Projects.SetFunding).
		DELETE("/funding", write, h.Projects.RemoveFunding).
		POST("/offers/:code", write, h.Projects.LinkOffer).
		DELETE("/offers/:code", write, h.Projects.UnlinkOffer)

	project.POST("/experiments", write, h.Experiments.Create).
		GET("/experiments", read, h.Experiments.List)

	project.POST("/batches", write, h.Samples.RegisterBatch).
		GET("/batches", read, h.Samples.ListBatches).
		PUT("/batches/:bid", write, h.Samples.EditBatch).
		PUT("/batches/:bid/samples", write, h.Samples.UpdateSamples).
		DELETE("/batches/:bid", write, h.Samples.DeleteBatch).
		GET("/samples", read, h.Samples.ListSamples).
		GET("/samples/:sid", read, h.Samples.GetSample).
		DELETE("/samples", write, h.Samples.DeleteSamples).
		POST("/samples/validate", read, h.Samples.ValidateSamples)

	project.POST("/qc", write, h.Samples.UploadQualityControl).
		GET("/qc", read, h.Samples.ListQualityControl).
		GET("/qc/:qid", read, h.Samples.GetQualityControl).
		GET("/qc/:qid/content", read, h.Samples.DownloadQualityControl).
		DELETE("/qc/:qid", write, h.Samples.DeleteQualityControl)

	project.POST("/measurements/ngs", write, h.Measurements.RegisterNGS).
		PUT("/measurements/ngs", write, h.Measurements.UpdateNGS).
		POST("/measurements/ngs/validate", read, h.Measurements.ValidateNGS).
		POST("/measurements/pxp", write, h.Measurements.RegisterPxP).
		PUT("/measurements/pxp", write, h.Measurements.UpdatePxP).
		POST("/measurements/pxp/validate", read, h.Measurements.ValidatePxP).
		POST("/measurements/import", write, h.Measurements.Import).
		GET("/measurements", read, h.Measurements.List).
		DELETE("/measurements", write, h.Measurements.Delete)

	project.GET("/access", admin, h.Access.List).
		POST("/access", admin, h.Access.Grant).
		DELETE("/access/:userId", admin, h.Access.Revoke)

	project.GET("/export/ro-crate", read, h.Exports.ROCrate).
		HEAD("/export/ro-crate", read, h.Exports.Links)

	experimentRead := g.Projects.RequireFor(access.PermissionRead, h.Experiments.ProjectOfExperiment)
	experimentWrite := g.Projects.RequireFor(access.PermissionWrite, h.Experiments.ProjectOfExperiment)

	experimentRoutes := NewDomainGroup("/experiments/:eid")
	experimentRoutes.GET("", experimentRead, h.Experiments.Get).
		PUT("", experimentWrite, h.Experiments.UpdateDescription).
		POST("/variables", experimentWrite, h.Experiments.AddVariables).
		DELETE("/variables", experimentWrite, h.Experiments.DeleteAllVariables).
		PUT("/variables/:name", experimentWrite, h.Experiments.UpdateVariable).
		DELETE("/variables/:name", experimentWrite, h.Experiments.DeleteVariable).
		POST("/groups", experimentWrite, h.Experiments.AddGroup).
		PUT("/groups/:gid", experimentWrite, h.Experiments.UpdateGroup).
		DELETE("/groups/:gid", experimentWrite, h.Experiments.DeleteGroup).
		POST("/confounding", experimentWrite, h.Experiments.CreateConfoundingVariable).
		GET("/confounding", experimentRead, h.Experiments.ListConfoundingVariables).
		PUT("/confounding/:vid", experimentWrite, h.Experiments.RenameConfoundingVariable).
		DELETE("/confounding/:vid", experimentWrite, h.Experiments.DeleteConfoundingVariable).
		PUT("/confounding-levels", experimentWrite, h.Experiments.SetConfoundingLevels).
		GET("/confounding-levels", experimentRead, h.Experiments.ListConfoundingLevels)

	offerRoutes := NewDomainGroup("/offers")
	offerRoutes.GET("", h.Offers.Search).
		GET("/:code", h.Offers.Get).
		GET("/:code/document", h.Offers.Document).
		POST("/:code/document", middleware.RequireAuthority(access.AdminAuthority), h.Offers.UploadDocument)

	lookupRoutes := NewDomainGroup("")
	lookupRoutes.GET("/ontology/search", h.Lookups.SearchTerms).
		GET("/ontology/terms/:curie", h.Lookups.GetTerm).
		GET("/organisations/resolve", h.Lookups.ResolveOrganisation)

	systemRoutes := NewDomainGroup("/system")
	systemRoutes.GET("/info", h.System.Info).
		GET("/ping", h.System.Ping)

	return []*DomainGroup{
		authRoutes,
		userRoutes,
		projectRoutes,
		experimentRoutes,
		offerRoutes,
		lookupRoutes,
		systemRoutes,
	}
}

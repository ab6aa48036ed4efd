package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hr-letter-api/internal/middleware"
	"github.com/noah-isme/hr-letter-api/internal/models"
)

// Routes groups the handlers mounted by Register. Documents may be nil when issuance is disabled.
type Routes struct {
	LetterRequests *LetterRequestHandler
	Templates      *LetterTemplateHandler
	Documents      *LetterDocumentHandler
	Metrics        *MetricsHandler
	Tokens         middleware.TokenValidator
}

// Register mounts health and metrics endpoints at the root and the API under apiPrefix.
func (rt Routes) Register(r *gin.Engine, apiPrefix string) {
	if rt.Metrics != nil {
		r.GET("/health", rt.Metrics.Health)
		r.GET("/ready", rt.Metrics.Ready)
		r.GET("/metrics", rt.Metrics.Prometheus)
	}

	api := r.Group(apiPrefix)
	if rt.Documents != nil {
		api.GET("/letter-documents/download/:token", rt.Documents.Download)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(rt.Tokens))

	admin := middleware.RequireRoles(models.RoleAdmin)

	secured.GET("/letter-types", ListLetterTypes)

	requests := secured.Group("/letter-requests")
	requests.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleEmployee), rt.LetterRequests.Create)
	requests.GET("", admin, rt.LetterRequests.List)
	requests.GET("/export", admin, rt.LetterRequests.Export)
	requests.GET("/employee/:employeeId", middleware.RBAC(string(models.RoleAdmin), middleware.RoleSelf), rt.LetterRequests.ListByEmployee)
	requests.GET("/:id", rt.LetterRequests.Get)
	requests.PATCH("/:id", admin, rt.LetterRequests.Transition)
	if rt.Documents != nil {
		requests.GET("/:id/document", rt.Documents.Status)
	}

	if rt.Templates != nil {
		templates := secured.Group("/templates", admin)
		templates.GET("", rt.Templates.List)
		templates.POST("", rt.Templates.Create)
		templates.GET("/:id", rt.Templates.Get)
		templates.PUT("/:id", rt.Templates.Update)
		templates.DELETE("/:id", rt.Templates.Delete)
	}
}

package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the read/create surface of a catalog handler.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
}

// DocumentRouteHandler defines the lifecycle surface of a document handler.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	AddLine(c *gin.Context)
	RemoveLine(c *gin.Context)
	Commit(c *gin.Context)
	Movements(c *gin.Context)
}

// DocumentBulkCreateHandler is an optional interface for documents created together with their lines.
type DocumentBulkCreateHandler interface {
	CreateWithLines(c *gin.Context)
}

// RegisterCatalogRoutes registers list, create and get routes for a catalog.
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
}

// RegisterDocumentRoutes registers the document lifecycle routes.
// If the handler also implements DocumentBulkCreateHandler, /with-lines is registered too.
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.POST("/:id/lines", handler.AddLine)
	group.DELETE("/:id/lines/:lineId", handler.RemoveLine)
	group.POST("/:id/commit", handler.Commit)
	group.GET("/:id/movements", handler.Movements)

	if bulk, ok := handler.(DocumentBulkCreateHandler); ok {
		group.POST("/with-lines", bulk.CreateWithLines)
	}
}

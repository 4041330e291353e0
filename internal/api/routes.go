package api

import (
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/lenskings/sound-service/cmd/middleware"
	handlers "github.com/lenskings/sound-service/internal/api/handlers/file"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, PATCH, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

func RegisterRoutes(r *gin.Engine) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())
	r.Use(gintrace.Middleware("sound-service"))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		// Catalog browsing (public)
		api.GET("/categories", handlers.ListCategories)
		api.GET("/categories/:category/files", handlers.ListCategoryFiles)
		api.GET("/files/recent", handlers.RecentFiles)
		api.GET("/files/:id", handlers.GetFileInfo)
		api.GET("/files/:id/download", handlers.DownloadFile)

		// Authenticated endpoints
		authed := api.Group("")
		authed.Use(middleware.RequireAuth())
		{
			authed.POST("/uploads", handlers.UploadFile)
			authed.GET("/profile/files", handlers.MyUploads)
		}
	}
}

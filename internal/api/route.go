package api

import (
	"Prism/internal/api/middleware"
	"Prism/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		mediaGroup := apiGroup.Group("/media")
		{
			mediaGroup.POST("", group.MediaHandler.Upload)
			mediaGroup.GET("/search", group.MediaHandler.Search)
			mediaGroup.GET("/:id", group.MediaHandler.Get)
			mediaGroup.DELETE("/:id", group.MediaHandler.Deactivate)
			mediaGroup.POST("/:id/low-res", group.MediaHandler.TranscodeLowRes)
		}

		adminGroup := apiGroup.Group("/admin")
		{
			adminGroup.POST("/media/migrate", group.AdminHandler.Migrate)
			adminGroup.GET("/jobs/:name/runs", group.AdminHandler.JobRuns)
		}
	}

	return r
}

package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/logger"
)

type Handlers struct {
	Jobs      *JobHandler
	Queue     *QueueHandler
	Apply     *ApplyHandler
	Interview *InterviewHandler
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NewRouter wires middleware and every route under /api.
func NewRouter(h Handlers, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinMiddleware(log), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")
	{
		api.GET("/health", HealthCheck)

		api.POST("/job-snipe", h.Jobs.Snipe)

		api.GET("/queue", h.Queue.List)
		api.POST("/queue", h.Queue.Add)
		api.PATCH("/queue/:id", h.Queue.UpdateStatus)

		api.POST("/apply", h.Apply.Apply)
		api.POST("/interview-prep", h.Interview.Prepare)
	}

	return r
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/dtos"
	"github.com/justsurfingit/jobsprint/internal/models"
	"github.com/justsurfingit/jobsprint/internal/services"
)

type QueueStore interface {
	Enqueue(ctx context.Context, apps []services.NewApplication) (int, error)
	ListToday(ctx context.Context) ([]models.QueuedApplication, error)
	SetStatus(ctx context.Context, id string, status models.ApplicationStatus, appliedAt *time.Time) (*models.QueuedApplication, error)
}

type QueueHandler struct {
	Queue  QueueStore
	Logger *zap.Logger
}

func NewQueueHandler(queue QueueStore, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{Queue: queue, Logger: logger}
}

// List is the GET /queue endpoint: today's queue, newest first.
func (h *QueueHandler) List(c *gin.Context) {
	queue, err := h.Queue.ListToday(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if queue == nil {
		queue = []models.QueuedApplication{}
	}
	c.JSON(http.StatusOK, dtos.QueueResponse{Queue: queue, Count: len(queue)})
}

// Add is the POST /queue endpoint
func (h *QueueHandler) Add(c *gin.Context) {
	var req dtos.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, bindError(err))
		return
	}

	apps := make([]services.NewApplication, 0, len(req.Jobs))
	for _, job := range req.Jobs {
		apps = append(apps, services.NewApplication{
			Title:    job.Title,
			Company:  job.Company,
			URL:      job.URL,
			Platform: job.Platform,
		})
	}

	inserted, err := h.Queue.Enqueue(c.Request.Context(), apps)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dtos.EnqueueResponse{Success: true, Added: len(apps), Inserted: inserted})
}

// UpdateStatus is the PATCH /queue/:id endpoint
func (h *QueueHandler) UpdateStatus(c *gin.Context) {
	var req dtos.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, bindError(err))
		return
	}

	row, err := h.Queue.SetStatus(c.Request.Context(), c.Param("id"), req.Status, req.AppliedAt)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dtos.StatusUpdateResponse{
		Success:   true,
		ID:        row.ID,
		Status:    row.Status,
		AppliedAt: row.AppliedAt,
	})
}

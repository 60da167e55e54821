package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/dtos"
	"github.com/justsurfingit/jobsprint/internal/services"
)

type JobHandler struct {
	Sniper services.Sniper
	Logger *zap.Logger
}

func NewJobHandler(sniper services.Sniper, logger *zap.Logger) *JobHandler {
	return &JobHandler{Sniper: sniper, Logger: logger}
}

// Snipe is the POST /job-snipe endpoint
func (h *JobHandler) Snipe(c *gin.Context) {
	var req dtos.SnipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, bindError(err))
		return
	}

	res, err := h.Sniper.Snipe(c.Request.Context(), services.SnipeRequest{
		Role:   req.Role,
		Window: req.Window,
		Limit:  req.Limit,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, dtos.SnipeResponse{
		Jobs:   res.Jobs,
		Count:  res.Count,
		Role:   res.Role,
		Window: res.Window,
	})
}

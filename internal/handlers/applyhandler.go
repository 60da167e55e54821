package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/dtos"
	"github.com/justsurfingit/jobsprint/internal/services"
)

type Applier interface {
	Apply(ctx context.Context, jobID, jobURL string) (*services.ApplyResult, error)
}

type ApplyHandler struct {
	Applier Applier
	Logger  *zap.Logger
}

func NewApplyHandler(applier Applier, logger *zap.Logger) *ApplyHandler {
	return &ApplyHandler{Applier: applier, Logger: logger}
}

// Apply is the POST /apply endpoint. A failed attempt still answers with the
// posting link so the user can finish by hand.
func (h *ApplyHandler) Apply(c *gin.Context) {
	var req dtos.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, bindError(err))
		return
	}

	res, err := h.Applier.Apply(c.Request.Context(), req.JobID, req.JobURL)
	if err != nil {
		status, body := errorBody(err)
		if res != nil {
			body.ManualURL = res.ManualURL
			body.Screenshot = res.Screenshot
		}
		respond(c, h.Logger, err, status, body)
		return
	}

	c.JSON(http.StatusOK, dtos.ApplyResponse{
		Success:    true,
		JobID:      res.JobID,
		Message:    res.Message,
		Screenshot: res.Screenshot,
		Manual:     res.Manual,
		ManualURL:  res.ManualURL,
	})
}

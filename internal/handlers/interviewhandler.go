package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/dtos"
	"github.com/justsurfingit/jobsprint/internal/models"
	"github.com/justsurfingit/jobsprint/internal/services"
)

type InterviewPreparer interface {
	Prepare(ctx context.Context, req services.InterviewRequest) (*services.InterviewResult, error)
}

type InterviewHandler struct {
	Preparer InterviewPreparer
	Logger   *zap.Logger
}

func NewInterviewHandler(p InterviewPreparer, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{Preparer: p, Logger: logger}
}

// Prepare is the POST /interview-prep endpoint
func (h *InterviewHandler) Prepare(c *gin.Context) {
	var req dtos.InterviewPrepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, bindError(err))
		return
	}

	res, err := h.Preparer.Prepare(c.Request.Context(), services.InterviewRequest{
		Role:  req.Role,
		Level: req.Difficulty,
		Count: req.NumberOfQuestions,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	questions := res.Questions
	if questions == nil {
		questions = []models.InterviewQuestion{}
	}
	c.JSON(http.StatusOK, dtos.InterviewPrepResponse{
		Role:           res.Role,
		Difficulty:     res.Level,
		TotalQuestions: len(questions),
		Questions:      questions,
		Cached:         res.Cached,
	})
}

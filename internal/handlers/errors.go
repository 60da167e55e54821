package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/dtos"
	"github.com/justsurfingit/jobsprint/internal/errors"
	"github.com/justsurfingit/jobsprint/internal/services"
)

func statusFor(t errors.ErrorType) int {
	switch t {
	case errors.ErrTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeConflict:
		return http.StatusConflict
	case errors.ErrTypeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorBody turns err into the JSON error body. Domain errors expose their
// message, anything else is reported as an internal error.
func errorBody(err error) (int, dtos.ErrorResponse) {
	var de *errors.DomainError
	if !stderrors.As(err, &de) {
		return http.StatusInternalServerError, dtos.ErrorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		}
	}

	body := dtos.ErrorResponse{Error: de.Message}
	if de.Err != nil {
		body.Details = de.Err.Error()
	}
	if de.Type == errors.ErrTypeRateLimit {
		body.Retryable = true
		body.RetryAfterSeconds = int(services.RetryAfter.Seconds())
	}
	return statusFor(de.Type), body
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	status, body := errorBody(err)
	respond(c, log, err, status, body)
}

func respond(c *gin.Context, log *zap.Logger, err error, status int, body dtos.ErrorResponse) {
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("type", string(errors.TypeOf(err))),
			zap.Error(err))
	}
	c.JSON(status, body)
}

func bindError(err error) error {
	return errors.InvalidInput("Invalid JSON format", err)
}

package dtos

import (
	"time"

	"github.com/justsurfingit/jobsprint/internal/models"
)

type SnipeRequest struct {
	Role   string `json:"role" binding:"required"`
	Window string `json:"window"` // "h" or "d", defaults to "h"
	Limit  int    `json:"limit"`
}

type SnipeResponse struct {
	Jobs   []models.JobPosting `json:"jobs"`
	Count  int                 `json:"count"`
	Role   string              `json:"role"`
	Window string              `json:"window"`
}

// QueueJob is one submitted posting. Status and Platform are accepted for
// compatibility and ignored: new rows start as pending and the platform comes
// from the url.
type QueueJob struct {
	Title    string          `json:"title"`
	Company  string          `json:"company"`
	URL      string          `json:"url"`
	Platform models.Platform `json:"platform"`
	Status   string          `json:"status,omitempty"`
}

type EnqueueRequest struct {
	Jobs []QueueJob `json:"jobs"`
}

type EnqueueResponse struct {
	Success  bool `json:"success"`
	Added    int  `json:"added"`
	Inserted int  `json:"inserted"`
}

type QueueResponse struct {
	Queue []models.QueuedApplication `json:"queue"`
	Count int                        `json:"count"`
}

type StatusUpdateRequest struct {
	Status    models.ApplicationStatus `json:"status" binding:"required"`
	AppliedAt *time.Time               `json:"appliedAt"`
}

type StatusUpdateResponse struct {
	Success   bool                     `json:"success"`
	ID        string                   `json:"id"`
	Status    models.ApplicationStatus `json:"status"`
	AppliedAt *time.Time               `json:"appliedAt,omitempty"`
}

type ApplyRequest struct {
	JobID  string `json:"jobId"`
	JobURL string `json:"jobUrl"`
}

type ApplyResponse struct {
	Success    bool   `json:"success"`
	JobID      string `json:"jobId"`
	Message    string `json:"message"`
	Screenshot string `json:"screenshot,omitempty"`
	Manual     bool   `json:"manual,omitempty"`
	ManualURL  string `json:"manualUrl,omitempty"`
}

type InterviewPrepRequest struct {
	Role              string `json:"role"`
	Difficulty        string `json:"difficulty"`
	NumberOfQuestions int    `json:"numberOfQuestions"`
}

type InterviewPrepResponse struct {
	Role           string                     `json:"role"`
	Difficulty     string                     `json:"difficulty"`
	TotalQuestions int                        `json:"totalQuestions"`
	Questions      []models.InterviewQuestion `json:"questions"`
	Cached         int                        `json:"cached"`
}

type ErrorResponse struct {
	Error             string `json:"error"`
	Details           string `json:"details,omitempty"`
	Retryable         bool   `json:"retryable,omitempty"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
	ManualURL         string `json:"manualUrl,omitempty"`
	Screenshot        string `json:"screenshot,omitempty"`
}

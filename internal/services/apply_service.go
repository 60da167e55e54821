package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/config"
	"github.com/justsurfingit/jobsprint/internal/errors"
	"github.com/justsurfingit/jobsprint/internal/models"
)

// Proof is what an automation run brings back for the user to check.
type Proof struct {
	Screenshot string // data URL
	CapturedAt time.Time
}

// Automator opens a posting in a remote browser.
type Automator interface {
	Configured() bool
	Open(ctx context.Context, jobURL string) (*Proof, error)
}

type StatusUpdater interface {
	SetStatus(ctx context.Context, id string, status models.ApplicationStatus, appliedAt *time.Time) (*models.QueuedApplication, error)
}

type ApplyResult struct {
	JobID      string
	Message    string
	Screenshot string
	Manual     bool
	ManualURL  string
}

type ApplyService struct {
	automator Automator
	queue     StatusUpdater
	store     interface{ Configured() bool }
	logger    *zap.Logger
}

func NewApplyService(automator Automator, queue StatusUpdater, store interface{ Configured() bool }, logger *zap.Logger) *ApplyService {
	return &ApplyService{automator: automator, queue: queue, store: store, logger: logger}
}

// Apply runs one apply attempt and records the outcome on the queue entry.
// On failure the returned result still carries the manual link, and a failed
// status write is only logged so it never hides the automation error.
func (s *ApplyService) Apply(ctx context.Context, jobID, jobURL string) (*ApplyResult, error) {
	jobID = strings.TrimSpace(jobID)
	jobURL = strings.TrimSpace(jobURL)
	if jobID == "" || jobURL == "" {
		return nil, errors.InvalidInput("jobId and jobUrl are required.", nil)
	}
	if u, err := url.Parse(jobURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.InvalidInput("jobUrl must be an absolute http(s) URL", err)
	}
	if s.store == nil || !s.store.Configured() {
		return nil, errors.NotConfigured("store is not configured: set DATABASE_URL")
	}

	result := &ApplyResult{JobID: jobID, ManualURL: jobURL}

	if s.automator == nil || !s.automator.Configured() {
		result.Manual = true
		result.Message = "Automation is not configured. Open the posting to apply manually."
		s.logger.Info("apply attempt fell back to manual", zap.String("job_id", jobID))
		return result, nil
	}

	log := s.logger.With(zap.String("job_id", jobID), zap.String("url", jobURL))
	log.Info("apply attempt started")

	proof, err := s.automator.Open(ctx, jobURL)
	if err != nil {
		log.Error("apply attempt failed", zap.Error(err))
		if _, serr := s.queue.SetStatus(ctx, jobID, models.StatusFailed, nil); serr != nil {
			log.Warn("failed to record failed status", zap.Error(serr))
		}
		result.Message = "Auto-apply failed. Open the posting to apply manually."
		return result, err
	}

	// the proof goes back even when the status write fails
	result.Screenshot = proof.Screenshot
	if _, err := s.queue.SetStatus(ctx, jobID, models.StatusApplied, &proof.CapturedAt); err != nil {
		log.Error("failed to record applied status", zap.Error(err))
		result.Message = "Posting opened but the queue entry could not be updated."
		return result, err
	}

	result.Message = "Posting opened and captured successfully."
	log.Info("apply attempt succeeded")
	return result, nil
}

// BrowserlessClient drives the hosted Browserless screenshot API.
type BrowserlessClient struct {
	token      string
	baseURL    string
	navTimeout time.Duration
	client     *http.Client
	logger     *zap.Logger
}

func NewBrowserlessClient(cfg config.BrowserConfig, logger *zap.Logger) *BrowserlessClient {
	return &BrowserlessClient{
		token:      cfg.Token,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		navTimeout: cfg.NavigationTimeout,
		// leave headroom over the navigation timeout for the render itself
		client: &http.Client{Timeout: cfg.NavigationTimeout + 15*time.Second},
		logger: logger,
	}
}

func (c *BrowserlessClient) Configured() bool { return c.token != "" }

type screenshotRequest struct {
	URL         string             `json:"url"`
	Options     screenshotOptions  `json:"options"`
	GotoOptions screenshotGoto     `json:"gotoOptions"`
	Viewport    screenshotViewport `json:"viewport"`
}

type screenshotOptions struct {
	Type     string `json:"type"`
	FullPage bool   `json:"fullPage"`
}

type screenshotGoto struct {
	WaitUntil string `json:"waitUntil"`
	Timeout   int64  `json:"timeout"`
}

type screenshotViewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (c *BrowserlessClient) Open(ctx context.Context, jobURL string) (*Proof, error) {
	if !c.Configured() {
		return nil, errors.NotConfigured("BROWSERLESS_TOKEN is not configured")
	}

	body, err := json.Marshal(screenshotRequest{
		URL:         jobURL,
		Options:     screenshotOptions{Type: "png"},
		GotoOptions: screenshotGoto{WaitUntil: "networkidle2", Timeout: c.navTimeout.Milliseconds()},
		Viewport:    screenshotViewport{Width: 1280, Height: 900},
	})
	if err != nil {
		return nil, errors.Internal("encoding screenshot request", err)
	}

	endpoint := fmt.Sprintf("%s/screenshot?token=%s", c.baseURL, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal("creating screenshot request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("executing screenshot request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Unavailable("reading screenshot response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("automation provider returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errors.RateLimit(msg, nil)
		}
		return nil, errors.Unavailable(msg, nil)
	}

	return &Proof{
		Screenshot: "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		CapturedAt: time.Now(),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

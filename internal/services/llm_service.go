package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"github.com/justsurfingit/jobsprint/internal/config"
	"github.com/justsurfingit/jobsprint/internal/errors"
)

// RetryAfter is the wait suggested to clients after a rate-limited generation.
const RetryAfter = 30 * time.Second

type modelFactory func(ctx context.Context) (llms.Model, error)

type LLMService struct {
	factory      modelFactory
	maxRetries   int
	initialDelay time.Duration
	logger       *zap.Logger

	mu    sync.Mutex
	model llms.Model
}

// NewLLMService does not contact the provider. The Gemini client is built on
// the first Generate call, and a missing API key is reported there.
func NewLLMService(cfg config.LLMConfig, logger *zap.Logger) *LLMService {
	factory := func(ctx context.Context) (llms.Model, error) {
		if cfg.APIKey == "" {
			return nil, errors.NotConfigured("GOOGLE_AI_API_KEY is not configured")
		}
		return googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
			googleai.WithHarmThreshold(googleai.HarmBlockNone),
		)
	}
	return newLLMService(factory, cfg.MaxRetries, cfg.InitialDelay, logger)
}

func newLLMService(factory modelFactory, maxRetries int, initialDelay time.Duration, logger *zap.Logger) *LLMService {
	return &LLMService{
		factory:      factory,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
		logger:       logger,
	}
}

func (s *LLMService) client(ctx context.Context) (llms.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model != nil {
		return s.model, nil
	}
	model, err := s.factory(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrTypeNotConfigured) {
			return nil, err
		}
		return nil, errors.Unavailable("failed to create generation client", err)
	}
	s.model = model
	return s.model, nil
}

// GenerateJSON sends prompt in JSON mode. Transient provider errors are
// retried with exponential backoff and jitter; anything else fails at once.
func (s *LLMService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	model, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialDelay
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.maxRetries)), ctx)

	var text string
	attempt := 0
	op := func() error {
		attempt++
		resp, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, llms.WithJSONMode())
		if err != nil {
			if IsTransient(err) {
				s.logger.Warn("generation rate limited, backing off",
					zap.Int("attempt", attempt),
					zap.Error(err))
				return err
			}
			return backoff.Permanent(err)
		}
		text = resp
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		if IsTransient(err) {
			return "", errors.RateLimit("AI is busy, too many requests. Please wait 30 seconds and try again.", err)
		}
		return "", errors.Unavailable("generation failed", err)
	}
	return text, nil
}

// "rate" alone would match words like "generate", so the rate markers are phrases.
var transientMarkers = []string{
	"429", "503", "quota", "overloaded",
	"rate limit", "rate-limit", "ratelimit", "rate exceeded",
	"resource exhausted", "resource_exhausted", "too many requests",
}

// IsTransient reports whether err looks like a rate limit or overload from
// the provider.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var gErr *googleapi.Error
	if stderrors.As(err, &gErr) {
		if gErr.Code == 429 || gErr.Code == 503 {
			return true
		}
	}
	if errors.Is(err, errors.ErrTypeRateLimit) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// DecodeList parses a model payload that should be a JSON array. Models
// sometimes wrap the array in an object, so each envelope key is tried in
// order. No match is a PARSE_FAILED error, never an empty list. A JSON null
// is no match; an empty array is a valid empty list.
func DecodeList[T any](raw string, envelopes ...string) ([]T, error) {
	cleaned := stripCodeFence(raw)

	var list []T
	if err := json.Unmarshal([]byte(cleaned), &list); err == nil && list != nil {
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, errors.ParseFailed("AI did not return valid JSON", err)
	}
	for _, key := range envelopes {
		inner, ok := obj[key]
		if !ok {
			continue
		}
		list = nil
		if err := json.Unmarshal(inner, &list); err == nil && list != nil {
			return list, nil
		}
	}
	return nil, errors.ParseFailed("AI returned JSON but no list was found", nil)
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

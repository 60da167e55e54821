package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/cache"
	"github.com/justsurfingit/jobsprint/internal/errors"
	"github.com/justsurfingit/jobsprint/internal/models"
)

const (
	WindowHour = "h"
	WindowDay  = "d"

	DefaultSnipeLimit = 20
	MaxSnipeLimit     = 100

	defaultAdapterTimeout = 30 * time.Second
)

type SnipeRequest struct {
	Role   string
	Window string
	Limit  int
}

type SnipeResult struct {
	Jobs   []models.JobPosting
	Count  int
	Role   string
	Window string
}

type SniperService struct {
	provider  SearchProvider
	platforms []PlatformAdapter
	cache     cache.Cache
	cacheTTL  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

type SniperOption func(*SniperService)

// WithSearchCache caches raw hits per platform query. A nil cache disables it.
func WithSearchCache(c cache.Cache, ttl time.Duration) SniperOption {
	return func(s *SniperService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithPlatforms(platforms []PlatformAdapter) SniperOption {
	return func(s *SniperService) { s.platforms = platforms }
}

// WithAdapterTimeout bounds each platform call. A timed out platform counts as
// zero hits.
func WithAdapterTimeout(d time.Duration) SniperOption {
	return func(s *SniperService) { s.timeout = d }
}

func NewSniperService(provider SearchProvider, logger *zap.Logger, opts ...SniperOption) *SniperService {
	s := &SniperService{
		provider:  provider,
		platforms: DefaultPlatforms,
		timeout:   defaultAdapterTimeout,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SniperService) Snipe(ctx context.Context, req SnipeRequest) (*SnipeResult, error) {
	if s.provider == nil || !s.provider.Configured() {
		return nil, errors.NotConfigured("SERPER_API_KEY is not configured")
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		return nil, errors.InvalidInput("role is required", nil)
	}
	window := req.Window
	if window == "" {
		window = WindowHour
	}
	if window != WindowHour && window != WindowDay {
		return nil, errors.InvalidInput(fmt.Sprintf("window must be %q or %q", WindowHour, WindowDay), nil)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSnipeLimit
	}
	if limit > MaxSnipeLimit {
		limit = MaxSnipeLimit
	}

	if len(s.platforms) == 0 {
		return nil, errors.Internal("no platforms to search", nil)
	}
	perPlatform := (limit + len(s.platforms) - 1) / len(s.platforms)
	discoveredAt := s.now()

	// one slot per adapter keeps the merge order equal to submission order
	batches := make([][]models.JobPosting, len(s.platforms))
	var wg sync.WaitGroup
	for i, platform := range s.platforms {
		wg.Add(1)
		go func(i int, platform PlatformAdapter) {
			defer wg.Done()
			hits := s.searchPlatform(ctx, platform, role, window, perPlatform)
			postings := make([]models.JobPosting, 0, len(hits))
			for idx, hit := range hits {
				postings = append(postings, Normalize(hit, platform.Platform, idx, discoveredAt))
			}
			batches[i] = postings
		}(i, platform)
	}
	wg.Wait()

	jobs := mergeUnique(batches, limit)

	s.logger.Info("snipe completed",
		zap.String("role", role),
		zap.String("window", window),
		zap.Int("limit", limit),
		zap.Int("count", len(jobs)))

	return &SnipeResult{Jobs: jobs, Count: len(jobs), Role: role, Window: window}, nil
}

// mergeUnique concatenates batches in order, keeps the first posting per URL
// and stops at limit.
func mergeUnique(batches [][]models.JobPosting, limit int) []models.JobPosting {
	seen := make(map[string]struct{})
	out := make([]models.JobPosting, 0, limit)
	for _, batch := range batches {
		for _, job := range batch {
			if _, dup := seen[job.URL]; dup {
				continue
			}
			seen[job.URL] = struct{}{}
			out = append(out, job)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// searchPlatform never fails: provider errors and timeouts are logged and
// yield no hits, so one board being down does not sink the whole snipe.
func (s *SniperService) searchPlatform(ctx context.Context, platform PlatformAdapter, role, window string, budget int) []SearchHit {
	key := searchCacheKey(platform, role, window, budget)
	if hits, ok := s.cachedHits(ctx, key); ok {
		return hits
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	hits, err := s.provider.Search(ctx, SearchQuery{
		Q:      platform.Query(role),
		Num:    budget,
		Window: window,
	})
	if err != nil {
		s.logger.Warn("platform search failed",
			zap.String("platform", string(platform.Platform)),
			zap.String("host", platform.Host),
			zap.Error(err))
		return nil
	}

	s.storeHits(ctx, key, hits)
	return hits
}

type hitList []SearchHit

func (h hitList) MarshalBinary() ([]byte, error) { return json.Marshal([]SearchHit(h)) }

func (h *hitList) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, (*[]SearchHit)(h))
}

func searchCacheKey(platform PlatformAdapter, role, window string, budget int) string {
	return fmt.Sprintf("snipe:%s:%s:%d:%s", platform.Platform, window, budget, strings.ToLower(role))
}

func (s *SniperService) cachedHits(ctx context.Context, key string) ([]SearchHit, bool) {
	if s.cache == nil {
		return nil, false
	}
	var hits hitList
	err := s.cache.Get(ctx, key, &hits)
	if err == nil {
		s.logger.Debug("search cache hit", zap.String("key", key))
		return hits, true
	}
	if !stderrors.Is(err, cache.ErrNotFound) {
		s.logger.Warn("search cache read failed", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

func (s *SniperService) storeHits(ctx context.Context, key string, hits []SearchHit) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, hitList(hits), s.cacheTTL); err != nil {
		s.logger.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
	}
}

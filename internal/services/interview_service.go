package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/errors"
	"github.com/justsurfingit/jobsprint/internal/models"
)

const (
	DefaultInterviewQuestions = 5
	MaxInterviewQuestions     = 15
)

var interviewLevels = map[string]bool{"entry": true, "mid": true, "senior": true}

// Generator produces a JSON document for a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

type InterviewRequest struct {
	Role  string
	Level string
	Count int
}

type InterviewResult struct {
	Role      string
	Level     string
	Questions []models.InterviewQuestion
	Cached    int
}

type InterviewService struct {
	llm    Generator
	db     DBProvider
	logger *zap.Logger
}

// NewInterviewService takes an optional db; without one every request is generated.
func NewInterviewService(llm Generator, db DBProvider, logger *zap.Logger) *InterviewService {
	return &InterviewService{llm: llm, db: db, logger: logger}
}

type generatedQuestion struct {
	Question    string `json:"question"`
	Type        string `json:"type"`
	ModelAnswer string `json:"modelAnswer"`
	Tips        string `json:"tips"`
}

// Prepare returns count questions for the role. Stored questions are used
// first; when there are fewer than count, only the shortfall is generated and
// then stored for the next caller.
func (s *InterviewService) Prepare(ctx context.Context, req InterviewRequest) (*InterviewResult, error) {
	role := strings.TrimSpace(req.Role)
	if role == "" {
		return nil, errors.InvalidInput("role is required", nil)
	}
	level := strings.ToLower(strings.TrimSpace(req.Level))
	if level == "" {
		level = "mid"
	}
	if !interviewLevels[level] {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown difficulty %q", req.Level), nil)
	}
	count := req.Count
	if count <= 0 {
		count = DefaultInterviewQuestions
	}
	if count > MaxInterviewQuestions {
		count = MaxInterviewQuestions
	}
	key := strings.ToLower(role)

	cached := s.loadCached(ctx, key, level, count)
	result := &InterviewResult{Role: role, Level: level, Questions: cached, Cached: len(cached)}
	missing := count - len(cached)
	if missing == 0 {
		return result, nil
	}

	raw, err := s.llm.GenerateJSON(ctx, interviewPrompt(role, level, missing, cached))
	if err != nil {
		return nil, err
	}
	generated, err := DecodeList[generatedQuestion](raw, "questions", "interviewQuestions", "data")
	if err != nil {
		s.logger.Warn("interview prep payload rejected", zap.String("role", role), zap.Error(err))
		return nil, err
	}

	fresh := make([]models.InterviewQuestion, 0, missing)
	for _, g := range generated {
		if len(fresh) == missing {
			break
		}
		if strings.TrimSpace(g.Question) == "" {
			continue
		}
		fresh = append(fresh, models.InterviewQuestion{
			Role:        key,
			Level:       level,
			Question:    strings.TrimSpace(g.Question),
			Type:        models.QuestionType(strings.ToLower(g.Type)),
			ModelAnswer: g.ModelAnswer,
			Tips:        g.Tips,
		})
	}
	if len(fresh) == 0 && len(cached) == 0 {
		return nil, errors.ParseFailed("AI returned no interview questions", nil)
	}

	s.store(ctx, fresh)
	result.Questions = append(result.Questions, fresh...)
	return result, nil
}

func (s *InterviewService) loadCached(ctx context.Context, role, level string, limit int) []models.InterviewQuestion {
	if s.db == nil {
		return nil
	}
	db, err := s.db.DB(ctx)
	if err != nil {
		if !errors.Is(err, errors.ErrTypeNotConfigured) {
			s.logger.Warn("interview cache unavailable", zap.Error(err))
		}
		return nil
	}
	var out []models.InterviewQuestion
	if err := db.Where("role = ? AND level = ?", role, level).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		s.logger.Warn("interview cache read failed", zap.Error(err))
		return nil
	}
	return out
}

func (s *InterviewService) store(ctx context.Context, questions []models.InterviewQuestion) {
	if s.db == nil || len(questions) == 0 {
		return
	}
	db, err := s.db.DB(ctx)
	if err != nil {
		return
	}
	if err := db.Create(&questions).Error; err != nil {
		s.logger.Warn("interview cache write failed", zap.Error(err))
	}
}

func interviewPrompt(role, level string, count int, existing []models.InterviewQuestion) string {
	var avoid strings.Builder
	for _, q := range existing {
		avoid.WriteString("- ")
		avoid.WriteString(q.Question)
		avoid.WriteString("\n")
	}

	prompt := fmt.Sprintf(`You are an expert technical interviewer and career coach.
Generate exactly %d interview questions and model answers for:

Role: %s
Seniority: %s

RULES:
1. Questions must be highly relevant to the role and seniority level.
2. Include a mix of technical, behavioral, and situational questions.
3. "modelAnswer" is a structured response a strong candidate would give.
4. "tips" is actionable advice on how to approach the question.
`, count, role, level)

	if avoid.Len() > 0 {
		prompt += "5. Do not repeat any of these questions:\n" + avoid.String()
	}

	prompt += `
Return a JSON array of objects with this schema:
{
  "question": "string",
  "type": "technical | behavioral | situational",
  "modelAnswer": "string",
  "tips": "string"
}`
	return prompt
}

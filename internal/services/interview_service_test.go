package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/errors"
	"github.com/justsurfingit/jobsprint/internal/models"
)

type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *stubGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func questionsJSON(prefix string, n int) string {
	items := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf(`{"question":"%s %d?","type":"Technical","modelAnswer":"answer","tips":"tip"}`, prefix, i))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func seedQuestions(t *testing.T, svc *InterviewService, role, level string, n int) {
	t.Helper()
	db, err := svc.db.DB(context.Background())
	require.NoError(t, err)
	base := time.Now().Add(-time.Hour)
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&models.InterviewQuestion{
			Role:      role,
			Level:     level,
			Question:  fmt.Sprintf("Stored %d?", i),
			Type:      models.QuestionBehavioral,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}).Error)
	}
}

func TestInterviewService_GeneratesAndStores(t *testing.T) {
	gen := &stubGenerator{reply: questionsJSON("Fresh", 5)}
	svc := NewInterviewService(gen, newTestDB(t), zap.NewNop())

	res, err := svc.Prepare(context.Background(), InterviewRequest{Role: "Data Analyst"})
	require.NoError(t, err)
	assert.Equal(t, "mid", res.Level)
	assert.Equal(t, 0, res.Cached)
	require.Len(t, res.Questions, 5)
	assert.Equal(t, models.QuestionTechnical, res.Questions[0].Type)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Generate exactly 5")

	// stored rows answer the next request without generation
	again, err := svc.Prepare(context.Background(), InterviewRequest{Role: "data analyst", Level: "MID"})
	require.NoError(t, err)
	assert.Equal(t, 5, again.Cached)
	assert.Len(t, again.Questions, 5)
	assert.Len(t, gen.prompts, 1)
}

func TestInterviewService_SupplementsPartialCache(t *testing.T) {
	gen := &stubGenerator{reply: questionsJSON("Fresh", 4)}
	svc := NewInterviewService(gen, newTestDB(t), zap.NewNop())
	seedQuestions(t, svc, "data analyst", "senior", 3)

	res, err := svc.Prepare(context.Background(), InterviewRequest{Role: "Data Analyst", Level: "senior", Count: 5})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Cached)
	require.Len(t, res.Questions, 5)
	assert.Equal(t, "Stored 1?", res.Questions[0].Question)
	assert.Equal(t, "Stored 3?", res.Questions[2].Question)
	assert.Equal(t, "Fresh 1?", res.Questions[3].Question)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Generate exactly 2")
	assert.Contains(t, gen.prompts[0], "- Stored 2?")

	db, err := svc.db.DB(context.Background())
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.InterviewQuestion{}).
		Where("role = ? AND level = ?", "data analyst", "senior").
		Count(&count).Error)
	assert.EqualValues(t, 5, count)
}

func TestInterviewService_WithoutStore(t *testing.T) {
	gen := &stubGenerator{reply: `{"questions":` + questionsJSON("Q", 3) + `}`}
	svc := NewInterviewService(gen, unconfiguredDB(), zap.NewNop())

	res, err := svc.Prepare(context.Background(), InterviewRequest{Role: "SRE", Level: "entry", Count: 3})
	require.NoError(t, err)
	assert.Len(t, res.Questions, 3)
	assert.Equal(t, 0, res.Cached)
}

func TestInterviewService_Validation(t *testing.T) {
	svc := NewInterviewService(&stubGenerator{}, nil, zap.NewNop())

	_, err := svc.Prepare(context.Background(), InterviewRequest{})
	assert.True(t, errors.Is(err, errors.ErrTypeInvalidInput))

	_, err = svc.Prepare(context.Background(), InterviewRequest{Role: "SRE", Level: "principal"})
	assert.True(t, errors.Is(err, errors.ErrTypeInvalidInput))
}

func TestInterviewService_CountIsCapped(t *testing.T) {
	gen := &stubGenerator{reply: questionsJSON("Q", 20)}
	svc := NewInterviewService(gen, nil, zap.NewNop())

	res, err := svc.Prepare(context.Background(), InterviewRequest{Role: "SRE", Count: 40})
	require.NoError(t, err)
	assert.Len(t, res.Questions, MaxInterviewQuestions)
}

func TestInterviewService_GenerationErrors(t *testing.T) {
	busy := &stubGenerator{err: errors.RateLimit("AI is busy", nil)}
	_, err := NewInterviewService(busy, nil, zap.NewNop()).
		Prepare(context.Background(), InterviewRequest{Role: "SRE"})
	assert.True(t, errors.Is(err, errors.ErrTypeRateLimit))

	empty := &stubGenerator{reply: `[]`}
	_, err = NewInterviewService(empty, nil, zap.NewNop()).
		Prepare(context.Background(), InterviewRequest{Role: "SRE"})
	assert.True(t, errors.Is(err, errors.ErrTypeParseFailed))

	garbage := &stubGenerator{reply: `sorry, I cannot help`}
	_, err = NewInterviewService(garbage, nil, zap.NewNop()).
		Prepare(context.Background(), InterviewRequest{Role: "SRE"})
	assert.True(t, errors.Is(err, errors.ErrTypeParseFailed))
}

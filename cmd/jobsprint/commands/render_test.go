package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/jobsprint/internal/models"
)

func TestRenderQueue(t *testing.T) {
	var buf bytes.Buffer
	err := renderQueue(&buf, []models.QueuedApplication{
		{
			ID:        "0b6e",
			Title:     "Backend Engineer",
			Company:   "acme",
			URL:       "https://jobs.lever.co/acme/1",
			Platform:  models.PlatformLever,
			Status:    models.StatusPending,
			CreatedAt: time.Date(2026, 10, 19, 9, 5, 0, 0, time.Local),
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "0b6e")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, "09:05")
}

func TestRenderPostings(t *testing.T) {
	var buf bytes.Buffer
	err := renderPostings(&buf, []models.JobPosting{
		{Title: "Data Analyst", Company: "globex", URL: "https://boards.greenhouse.io/globex/jobs/7", Platform: models.PlatformGreenhouse},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "globex")
	assert.Contains(t, buf.String(), "greenhouse")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "Ingénie...", truncateString("Ingénieur logiciel", 10))
	assert.Equal(t, "abc", truncateString("abcdef", 3))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
	assert.Equal(t, "", truncateString("abcdef", 0))
	assert.Equal(t, "", truncateString("abcdef", -1))
}

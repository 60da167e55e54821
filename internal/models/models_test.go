package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{StatusPending, StatusApplied, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusSkipped, true},
		{StatusPending, StatusPending, true},
		{StatusApplied, StatusPending, false},
		{StatusApplied, StatusFailed, false},
		{StatusApplied, StatusSkipped, true},
		{StatusFailed, StatusApplied, true},
		{StatusFailed, StatusSkipped, true},
		{StatusFailed, StatusPending, false},
		{StatusSkipped, StatusApplied, false},
		{StatusSkipped, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestApplicationStatus_Valid(t *testing.T) {
	assert.True(t, StatusSkipped.Valid())
	assert.False(t, ApplicationStatus("archived").Valid())
	assert.False(t, ApplicationStatus("").Valid())
}

func TestPlatform_Valid(t *testing.T) {
	for _, p := range []Platform{PlatformGreenhouse, PlatformLever, PlatformAshby, PlatformOther} {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, Platform("myspace").Valid())
	assert.False(t, Platform("").Valid())
}

func TestQueuedApplication_BeforeCreate(t *testing.T) {
	row := &QueuedApplication{Title: "SRE", URL: "https://example.com/x/1", Platform: "myspace"}
	assert.NoError(t, row.BeforeCreate(nil))
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, PlatformOther, row.Platform)

	kept := &QueuedApplication{ID: "fixed", Platform: PlatformLever}
	assert.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "fixed", kept.ID)
	assert.Equal(t, PlatformLever, kept.Platform)
}

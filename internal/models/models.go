package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformAshby      Platform = "ashby"
	PlatformOther      Platform = "other"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformGreenhouse, PlatformLever, PlatformAshby, PlatformOther:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	StatusPending ApplicationStatus = "pending"
	StatusApplied ApplicationStatus = "applied"
	StatusFailed  ApplicationStatus = "failed"
	StatusSkipped ApplicationStatus = "skipped"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApplied, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// CanTransition reports whether a row in status s may move to next.
// Repeating the current status is allowed. Otherwise nothing goes back to
// pending, applied only gives way to a user skip, and skipped is final.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next != StatusPending
	case StatusFailed:
		return next == StatusApplied || next == StatusSkipped
	case StatusApplied:
		return next == StatusSkipped
	}
	return false
}

// JobPosting is a search hit normalized by the sniper. It is not persisted
// until someone adds it to the queue.
type JobPosting struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	URL          string    `json:"url"`
	Platform     Platform  `json:"platform"`
	Snippet      string    `json:"snippet"`
	DiscoveredAt time.Time `json:"discoveredAt"`
}

type QueuedApplication struct {
	ID        string            `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string            `gorm:"not null" json:"title"`
	Company   string            `json:"company"`
	URL       string            `gorm:"uniqueIndex;not null" json:"url"`
	Platform  Platform          `gorm:"not null;default:'other'" json:"platform"`
	Status    ApplicationStatus `gorm:"not null;default:'pending'" json:"status"`
	AppliedAt *time.Time        `json:"applied_at"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

func (QueuedApplication) TableName() string { return "job_application_queue" }

func (a *QueuedApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if !a.Platform.Valid() {
		a.Platform = PlatformOther
	}
	return nil
}

type QuestionType string

const (
	QuestionTechnical   QuestionType = "technical"
	QuestionBehavioral  QuestionType = "behavioral"
	QuestionSituational QuestionType = "situational"
)

// InterviewQuestion rows double as the cache for generated interview prep.
type InterviewQuestion struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"-"`
	Role        string       `gorm:"index:idx_interview_role_level;not null" json:"-"`
	Level       string       `gorm:"index:idx_interview_role_level;not null" json:"-"`
	Question    string       `gorm:"type:text;not null" json:"question"`
	Type        QuestionType `json:"type"`
	ModelAnswer string       `gorm:"type:text" json:"modelAnswer"`
	Tips        string       `gorm:"type:text" json:"tips"`
	CreatedAt   time.Time    `json:"-"`
}

func (q *InterviewQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

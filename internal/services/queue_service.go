package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/justsurfingit/jobsprint/internal/errors"
	"github.com/justsurfingit/jobsprint/internal/events"
	"github.com/justsurfingit/jobsprint/internal/models"
)

// DBProvider hands out the store connection. It returns a NOT_CONFIGURED
// error when no store is set up.
type DBProvider interface {
	DB(ctx context.Context) (*gorm.DB, error)
}

// NewApplication is what callers submit to the queue: a posting without the
// store-assigned fields. Platform is informational; Enqueue derives it from URL.
type NewApplication struct {
	Title    string          `json:"title"`
	Company  string          `json:"company"`
	URL      string          `json:"url"`
	Platform models.Platform `json:"platform"`
}

func ApplicationFromPosting(p models.JobPosting) NewApplication {
	return NewApplication{Title: p.Title, Company: p.Company, URL: p.URL, Platform: p.Platform}
}

type QueueService struct {
	db        DBProvider
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewQueueService(db DBProvider, publisher events.Publisher, logger *zap.Logger) *QueueService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &QueueService{
		db:        db,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Enqueue inserts the applications that are not queued yet. Rows whose url
// already exists are left untouched. It returns how many rows were inserted.
func (s *QueueService) Enqueue(ctx context.Context, apps []NewApplication) (int, error) {
	if len(apps) == 0 {
		return 0, errors.InvalidInput("jobs array is required", nil)
	}

	rows := make([]models.QueuedApplication, 0, len(apps))
	urls := make([]string, 0, len(apps))
	for i, app := range apps {
		url := strings.TrimSpace(app.URL)
		title := strings.TrimSpace(app.Title)
		if url == "" || title == "" {
			return 0, errors.InvalidInput(fmt.Sprintf("jobs[%d]: url and title are required", i), nil)
		}
		platform := DetectPlatform(url)
		company := strings.TrimSpace(app.Company)
		if company == "" {
			company = ExtractCompany(url)
		}
		rows = append(rows, models.QueuedApplication{
			Title:    title,
			Company:  company,
			URL:      url,
			Platform: platform,
			Status:   models.StatusPending,
		})
		urls = append(urls, url)
	}

	db, err := s.db.DB(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(&rows)
	if result.Error != nil {
		return 0, errors.Persistence("failed to add to queue", result.Error)
	}
	inserted := int(result.RowsAffected)

	s.logger.Info("queue enqueue",
		zap.Int("submitted", len(rows)),
		zap.Int("inserted", inserted))

	if err := s.publisher.PublishEnqueued(ctx, events.EnqueuedEvent{
		Submitted: len(rows),
		Inserted:  inserted,
		URLs:      urls,
		At:        s.now(),
	}); err != nil {
		s.logger.Warn("failed to publish enqueue event", zap.Error(err))
	}

	return inserted, nil
}

// ListToday returns rows created since local midnight, newest first.
func (s *QueueService) ListToday(ctx context.Context) ([]models.QueuedApplication, error) {
	db, err := s.db.DB(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var queue []models.QueuedApplication
	if err := db.Where("created_at >= ?", midnight).
		Order("created_at DESC").
		Find(&queue).Error; err != nil {
		return nil, errors.Persistence("failed to fetch queue", err)
	}
	return queue, nil
}

// SetStatus moves one row to status. Applied rows get appliedAt, or now when
// appliedAt is nil; every other status clears applied_at.
func (s *QueueService) SetStatus(ctx context.Context, id string, status models.ApplicationStatus, appliedAt *time.Time) (*models.QueuedApplication, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.InvalidInput("id is required", nil)
	}
	if !status.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown status %q", status), nil)
	}

	db, err := s.db.DB(ctx)
	if err != nil {
		return nil, err
	}

	// Ids are uuids; anything else cannot name a row.
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NotFound(fmt.Sprintf("queue entry %s not found", id), err)
	}

	var stamp *time.Time
	if status == models.StatusApplied {
		if appliedAt != nil {
			t := *appliedAt
			stamp = &t
		} else {
			t := s.now()
			stamp = &t
		}
	}

	var row models.QueuedApplication
	var from models.ApplicationStatus
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "id = ?", id).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.NotFound(fmt.Sprintf("queue entry %s not found", id), err)
			}
			return errors.Persistence("failed to load queue entry", err)
		}

		from = row.Status
		if !from.CanTransition(status) {
			return errors.Conflict(fmt.Sprintf("cannot move queue entry from %s to %s", from, status), nil)
		}

		if err := tx.Model(&row).Updates(map[string]interface{}{
			"status":     status,
			"applied_at": stamp,
		}).Error; err != nil {
			return errors.Persistence("failed to update queue entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	row.Status = status
	row.AppliedAt = stamp

	s.logger.Info("queue status updated",
		zap.String("id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)))

	if err := s.publisher.PublishStatusChanged(ctx, events.StatusChangedEvent{
		ID:        id,
		From:      from,
		To:        status,
		AppliedAt: stamp,
		At:        s.now(),
	}); err != nil {
		s.logger.Warn("failed to publish status event", zap.Error(err))
	}

	return &row, nil
}

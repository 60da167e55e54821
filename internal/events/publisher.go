package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/config"
	"github.com/justsurfingit/jobsprint/internal/errors"
	"github.com/justsurfingit/jobsprint/internal/models"
)

const (
	SubjectQueueEnqueued = "jobsprint.queue.enqueued"
	SubjectQueueStatus   = "jobsprint.queue.status"
)

// Publisher announces queue changes to other services.
type Publisher interface {
	PublishEnqueued(ctx context.Context, evt EnqueuedEvent) error
	PublishStatusChanged(ctx context.Context, evt StatusChangedEvent) error
	Close() error
}

type EnqueuedEvent struct {
	Submitted int       `json:"submitted"`
	Inserted  int       `json:"inserted"`
	URLs      []string  `json:"urls"`
	At        time.Time `json:"at"`
}

type StatusChangedEvent struct {
	ID        string                   `json:"id"`
	From      models.ApplicationStatus `json:"from"`
	To        models.ApplicationStatus `json:"to"`
	AppliedAt *time.Time               `json:"applied_at,omitempty"`
	At        time.Time                `json:"at"`
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSPublisher(cfg config.NATSConfig, logger *zap.Logger) (Publisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Timeout(cfg.ConnTimeout),
		nats.Name("jobsprint-api"),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}
	return &natsPublisher{conn: conn, logger: logger}, nil
}

func (p *natsPublisher) PublishEnqueued(ctx context.Context, evt EnqueuedEvent) error {
	return p.publish(SubjectQueueEnqueued, evt)
}

func (p *natsPublisher) PublishStatusChanged(ctx context.Context, evt StatusChangedEvent) error {
	return p.publish(SubjectQueueStatus, evt)
}

func (p *natsPublisher) publish(subject string, evt interface{}) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return errors.Internal("marshaling event", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish event", zap.String("subject", subject), zap.Error(err))
		return errors.Unavailable("publishing event", err)
	}
	p.logger.Debug("published event", zap.String("subject", subject))
	return nil
}

func (p *natsPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

type nopPublisher struct{}

// NewNopPublisher is used when NATS_URL is not set.
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) PublishEnqueued(context.Context, EnqueuedEvent) error { return nil }

func (nopPublisher) PublishStatusChanged(context.Context, StatusChangedEvent) error { return nil }

func (nopPublisher) Close() error { return nil }

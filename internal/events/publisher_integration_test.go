//go:build integration

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/config"
	"github.com/justsurfingit/jobsprint/internal/models"
)

func TestNATSPublisher(t *testing.T) {
	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "nats",
		Tag:        "2.10-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	url := fmt.Sprintf("nats://%s", resource.GetHostPort("4222/tcp"))

	var sub *nats.Conn
	require.NoError(t, pool.Retry(func() error {
		sub, err = nats.Connect(url)
		return err
	}))
	t.Cleanup(sub.Close)

	msgs := make(chan *nats.Msg, 4)
	_, err = sub.ChanSubscribe(SubjectQueueStatus, msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := NewNATSPublisher(config.NATSConfig{URL: url, ConnTimeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	require.NoError(t, pub.PublishStatusChanged(context.Background(), StatusChangedEvent{
		ID:   "abc",
		From: models.StatusPending,
		To:   models.StatusSkipped,
		At:   time.Now(),
	}))

	select {
	case msg := <-msgs:
		var evt StatusChangedEvent
		require.NoError(t, json.Unmarshal(msg.Data, &evt))
		assert.Equal(t, "abc", evt.ID)
		assert.Equal(t, models.StatusSkipped, evt.To)
		assert.Nil(t, evt.AppliedAt)
	case <-time.After(5 * time.Second):
		t.Fatal("status event not received")
	}
}

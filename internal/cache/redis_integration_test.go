//go:build integration

package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/jobsprint/internal/config"
)

type hits []string

func (h hits) MarshalBinary() ([]byte, error) { return json.Marshal([]string(h)) }

func (h *hits) UnmarshalBinary(data []byte) error { return json.Unmarshal(data, (*[]string)(h)) }

func TestRedisCache(t *testing.T) {
	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	c := NewRedis(config.RedisConfig{Addr: resource.GetHostPort("6379/tcp")})
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, pool.Retry(func() error {
		return c.client.Ping(ctx).Err()
	}))

	var missing hits
	assert.ErrorIs(t, c.Get(ctx, "snipe:lever:h:7:sre", &missing), ErrNotFound)

	require.NoError(t, c.Set(ctx, "snipe:lever:h:7:sre", hits{"https://jobs.lever.co/acme/1"}, time.Minute))

	var got hits
	require.NoError(t, c.Get(ctx, "snipe:lever:h:7:sre", &got))
	assert.Equal(t, hits{"https://jobs.lever.co/acme/1"}, got)

	var s string
	require.NoError(t, c.Get(ctx, "snipe:lever:h:7:sre", &s))
	assert.JSONEq(t, `["https://jobs.lever.co/acme/1"]`, s)

	var bad int
	assert.ErrorIs(t, c.Get(ctx, "snipe:lever:h:7:sre", &bad), ErrInvalidValue)
}

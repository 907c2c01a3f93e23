//go:build integration || !unit

package redisad_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	redisad "campus_map/internal/adapters/redis"
)

func TestStore_RealRedis(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7.2-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	addr := fmt.Sprintf("127.0.0.1:%s", resource.GetPort("6379/tcp"))
	var s *redisad.Store
	if err := pool.Retry(func() error {
		s = redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: addr}))
		return s.Ping(context.Background())
	}); err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	if err := s.Save(ctx, "view:int", state{Lang: "en", Query: "도서관"}, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	var got state
	found, err := s.Load(ctx, "view:int", &got)
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if got.Query != "도서관" || got.Lang != "en" {
		t.Fatalf("unexpected state: %+v", got)
	}
}

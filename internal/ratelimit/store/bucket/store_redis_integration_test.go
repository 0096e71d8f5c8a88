//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ahliwaris/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.redis.Reset(s.T())
}

func (s *RedisBucketStoreSuite) TestAllowUpToLimit() {
	ctx := context.Background()
	for i := range 3 {
		result, err := s.store.Allow(ctx, "ratelimit:ip:10.0.0.1:issue", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(2-i, result.Remaining)
	}

	result, err := s.store.Allow(ctx, "ratelimit:ip:10.0.0.1:issue", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(0, result.Remaining)
	s.Positive(result.RetryAfter)

	keys, err := s.redis.Keys(ctx, "ratelimit:*")
	s.Require().NoError(err)
	s.Equal([]string{"ratelimit:ip:10.0.0.1:issue"}, keys)
}

func (s *RedisBucketStoreSuite) TestWindowSlides() {
	ctx := context.Background()
	base := time.Now()
	s.store.now = func() time.Time { return base }

	_, err := s.store.Allow(ctx, "slide", 1, time.Second)
	s.Require().NoError(err)
	denied, err := s.store.Allow(ctx, "slide", 1, time.Second)
	s.Require().NoError(err)
	s.False(denied.Allowed)

	s.store.now = func() time.Time { return base.Add(2 * time.Second) }
	result, err := s.store.Allow(ctx, "slide", 1, time.Second)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisBucketStoreSuite) TestKeyExpires() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "ttl", 5, time.Minute)
	s.Require().NoError(err)

	ttl, err := s.redis.Client.PTTL(ctx, "ttl").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

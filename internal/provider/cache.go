package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CachedVideoProvider is a read-through Redis cache in front of a
// VideoProvider. A Redis outage degrades to a direct provider call.
type CachedVideoProvider struct {
	inner VideoProvider
	rdb   *redis.Client
	ttl   time.Duration
	log   *logrus.Logger
}

func NewCachedVideoProvider(inner VideoProvider, rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *CachedVideoProvider {
	return &CachedVideoProvider{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedVideoProvider) SearchVideos(ctx context.Context, query string, limit int) ([]VideoHit, error) {
	key := fmt.Sprintf("search:videos:%d:%s", limit, query)

	if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var hits []VideoHit
		if json.Unmarshal(cached, &hits) == nil {
			return hits, nil
		}
	} else if err != redis.Nil {
		c.log.WithError(err).Debug("video cache read failed, querying provider")
	}

	hits, err := c.inner.SearchVideos(ctx, query, limit)
	if err != nil {
		return hits, err
	}

	if data, mErr := json.Marshal(hits); mErr == nil {
		if sErr := c.rdb.Set(ctx, key, data, c.ttl).Err(); sErr != nil {
			c.log.WithError(sErr).Debug("video cache write failed")
		}
	}
	return hits, nil
}

// CachedRepositoryProvider is the same read-through cache for repository
// search results.
type CachedRepositoryProvider struct {
	inner RepositoryProvider
	rdb   *redis.Client
	ttl   time.Duration
	log   *logrus.Logger
}

func NewCachedRepositoryProvider(inner RepositoryProvider, rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *CachedRepositoryProvider {
	return &CachedRepositoryProvider{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedRepositoryProvider) SearchRepositories(ctx context.Context, query string, limit int) ([]RepoHit, error) {
	key := fmt.Sprintf("search:repos:%d:%s", limit, query)

	if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var hits []RepoHit
		if json.Unmarshal(cached, &hits) == nil {
			return hits, nil
		}
	} else if err != redis.Nil {
		c.log.WithError(err).Debug("repo cache read failed, querying provider")
	}

	hits, err := c.inner.SearchRepositories(ctx, query, limit)
	if err != nil {
		return hits, err
	}

	if data, mErr := json.Marshal(hits); mErr == nil {
		if sErr := c.rdb.Set(ctx, key, data, c.ttl).Err(); sErr != nil {
			c.log.WithError(sErr).Debug("repo cache write failed")
		}
	}
	return hits, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// post.go provides a Valkey-backed cache for the public post JSON. The
// public feed and detail responses are built from the database once and
// reused until an admin write invalidates them.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// postKeyPrefix is the Valkey key prefix for cached post responses.
	postKeyPrefix = "post:"

	// indexKey caches the published post feed.
	indexKey = "posts:index"

	// DefaultPostTTL is how long a cached response stays valid without an
	// explicit invalidation.
	DefaultPostTTL = 5 * time.Minute
)

// PostCache manages cached public post responses in Valkey.
type PostCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPostCache creates a post cache backed by the given Valkey client.
func NewPostCache(client *redis.Client, ttl time.Duration) *PostCache {
	if ttl == 0 {
		ttl = DefaultPostTTL
	}
	return &PostCache{client: client, ttl: ttl}
}

// GetPost retrieves a cached post response by slug. Returns nil on miss.
func (pc *PostCache) GetPost(ctx context.Context, slug string) ([]byte, bool) {
	return pc.get(ctx, postKeyPrefix+slug)
}

// SetPost stores a post response under its slug.
func (pc *PostCache) SetPost(ctx context.Context, slug string, body []byte) {
	pc.set(ctx, postKeyPrefix+slug, body)
}

// GetIndex retrieves the cached published feed. Returns nil on miss.
func (pc *PostCache) GetIndex(ctx context.Context) ([]byte, bool) {
	return pc.get(ctx, indexKey)
}

// SetIndex stores the published feed response.
func (pc *PostCache) SetIndex(ctx context.Context, body []byte) {
	pc.set(ctx, indexKey, body)
}

// InvalidatePost removes a single cached post and the feed, which embeds
// the post's summary. Every admin save and delete goes through here.
func (pc *PostCache) InvalidatePost(ctx context.Context, slug string) {
	if err := pc.client.Del(ctx, postKeyPrefix+slug, indexKey).Err(); err != nil {
		slog.Warn("post cache invalidate error", "slug", slug, "error", err)
	}
	slog.Debug("post cache invalidated", "slug", slug)
}

// InvalidateAll removes every cached response by scanning for the prefix.
func (pc *PostCache) InvalidateAll(ctx context.Context) {
	pc.client.Del(ctx, indexKey)

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, postKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("post cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("post cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("post cache fully cleared", "deleted", deleted)
	}
}

func (pc *PostCache) get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("post cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("post cache hit", "key", key)
	return val, true
}

func (pc *PostCache) set(ctx context.Context, key string, body []byte) {
	if err := pc.client.Set(ctx, key, body, pc.ttl).Err(); err != nil {
		slog.Warn("post cache set error", "key", key, "error", err)
	}
}

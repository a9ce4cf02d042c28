// Package cache keeps rendered pages in redis for a short, fixed window.
// Nothing invalidates an entry on writes: a page may be stale until it
// expires or the cache is cleared by hand.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const IndexPagePrefix = "index_page"

type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type PageCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewPageCache(client *redis.Client, prefix string, ttl time.Duration) *PageCache {
	return &PageCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *PageCache) TTL() time.Duration {
	return c.ttl
}

// Key joins parts under the cache prefix.
func (c *PageCache) Key(parts ...string) string {
	return c.prefix + ":" + strings.Join(parts, ":")
}

func (c *PageCache) Get(ctx context.Context, key string) (*Entry, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %s", key)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, errors.Wrapf(err, "decode %s", key)
	}
	return &entry, true, nil
}

func (c *PageCache) Set(ctx context.Context, key string, entry *Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode entry")
	}
	return errors.Wrapf(c.client.Set(ctx, key, raw, c.ttl).Err(), "set %s", key)
}

// Clear drops every entry under the prefix and returns how many went.
func (c *PageCache) Clear(ctx context.Context) (int64, error) {
	var deleted int64
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	keys := make([]string, 0, 100)
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, keys...).Result()
		deleted += n
		keys = keys[:0]
		return err
	}

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == cap(keys) {
			if err := flush(); err != nil {
				return deleted, errors.Wrap(err, "clear page cache")
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, errors.Wrap(err, "scan page cache")
	}
	if err := flush(); err != nil {
		return deleted, errors.Wrap(err, "clear page cache")
	}
	return deleted, nil
}

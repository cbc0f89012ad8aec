package timing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisKeyPrefix = "libradesk:timings"

// RedisCache keeps session views, unsaved edits included, in Redis so they
// survive a restart. Entries expire after ttl, counted from the last write; a
// ttl of zero keeps them until invalidated.
type RedisCache struct {
	client  redis.UniversalClient
	session string
	ttl     time.Duration
}

func NewRedisCache(client redis.UniversalClient, session string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, session: session, ttl: ttl}
}

func (c *RedisCache) key(branchId int) string {
	return fmt.Sprintf("%s:%s:%d", redisKeyPrefix, c.session, branchId)
}

func (c *RedisCache) Get(ctx context.Context, branchId int) (CachedView, bool) {
	val, err := c.client.Get(ctx, c.key(branchId)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("failed to read cached timings for branch %d: %v", branchId, err)
		}
		return CachedView{}, false
	}
	var entry CachedView
	if err := json.Unmarshal(val, &entry); err != nil {
		log.Warnf("dropping unreadable cached timings for branch %d: %v", branchId, err)
		return CachedView{}, false
	}
	return entry, true
}

func (c *RedisCache) Put(ctx context.Context, branchId int, entry CachedView) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(branchId), data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, branchId int) error {
	return c.client.Del(ctx, c.key(branchId)).Err()
}

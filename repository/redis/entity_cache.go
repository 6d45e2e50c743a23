package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/user-service/domain"
	"github.com/fastygo/user-service/repository"
)

const (
	userKeyPrefix   = "user:"
	cardKeyPrefix   = "card:"
	cardsKeyPrefix  = "cards:"
	searchKeyPrefix = "users:search:"
)

// TTLs bound staleness even when an invalidation path is missed. They are a
// backstop, not the primary consistency mechanism: write paths evict or
// refresh affected keys explicitly before returning.
type TTLs struct {
	User   time.Duration
	Card   time.Duration
	Cards  time.Duration
	Search time.Duration
}

func (t TTLs) withDefaults() TTLs {
	if t.User <= 0 {
		t.User = 15 * time.Minute
	}
	if t.Card <= 0 {
		t.Card = 15 * time.Minute
	}
	if t.Cards <= 0 {
		t.Cards = 10 * time.Minute
	}
	if t.Search <= 0 {
		t.Search = 5 * time.Minute
	}
	return t
}

type entityCache struct {
	client *redislib.Client
	ttls   TTLs
	logger *zap.Logger
}

// NewEntityCache creates the Redis-backed entity cache. All operations are
// best-effort: transport errors are logged and reported as plain misses so a
// cache outage degrades to store reads instead of failing requests.
func NewEntityCache(client *redislib.Client, ttls TTLs, logger *zap.Logger) repository.EntityCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &entityCache{
		client: client,
		ttls:   ttls.withDefaults(),
		logger: logger,
	}
}

func (c *entityCache) GetUser(ctx context.Context, id int64) (*domain.User, bool) {
	var user domain.User
	if !c.get(ctx, userKey(id), &user) {
		return nil, false
	}
	return &user, true
}

func (c *entityCache) PutUser(ctx context.Context, user *domain.User) {
	if user == nil {
		return
	}
	c.put(ctx, userKey(user.ID), user, c.ttls.User)
}

func (c *entityCache) EvictUser(ctx context.Context, id int64) {
	c.evict(ctx, userKey(id))
}

func (c *entityCache) GetSearchPage(ctx context.Context, key string) (*domain.UserPage, bool) {
	var page domain.UserPage
	if !c.get(ctx, searchKeyPrefix+key, &page) {
		return nil, false
	}
	return &page, true
}

func (c *entityCache) PutSearchPage(ctx context.Context, key string, page *domain.UserPage) {
	if page == nil {
		return
	}
	c.put(ctx, searchKeyPrefix+key, page, c.ttls.Search)
}

func (c *entityCache) EvictSearchPages(ctx context.Context) {
	c.evictNamespace(ctx, searchKeyPrefix)
}

func (c *entityCache) GetCards(ctx context.Context, ownerID int64) ([]domain.Card, bool) {
	var cards []domain.Card
	if !c.get(ctx, cardsKey(ownerID), &cards) {
		return nil, false
	}
	return cards, true
}

func (c *entityCache) PutCards(ctx context.Context, ownerID int64, cards []domain.Card) {
	if cards == nil {
		cards = []domain.Card{}
	}
	c.put(ctx, cardsKey(ownerID), cards, c.ttls.Cards)
}

func (c *entityCache) EvictCards(ctx context.Context, ownerID int64) {
	c.evict(ctx, cardsKey(ownerID))
}

func (c *entityCache) GetCard(ctx context.Context, id int64) (*domain.Card, bool) {
	var card domain.Card
	if !c.get(ctx, cardKey(id), &card) {
		return nil, false
	}
	return &card, true
}

func (c *entityCache) PutCard(ctx context.Context, card *domain.Card) {
	if card == nil {
		return
	}
	c.put(ctx, cardKey(card.ID), card, c.ttls.Card)
}

func (c *entityCache) EvictCard(ctx context.Context, id int64) {
	c.evict(ctx, cardKey(id))
}

func (c *entityCache) get(ctx context.Context, key string, dest interface{}) bool {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redislib.Nil {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Warn("cache entry corrupted, evicting", zap.String("key", key), zap.Error(err))
		c.evict(ctx, key)
		return false
	}
	return true
}

func (c *entityCache) put(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.Warn("cache put failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *entityCache) evict(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache evict failed", zap.String("key", key), zap.Error(err))
	}
}

// evictNamespace deletes every key under the prefix using SCAN so the server
// is never blocked by a KEYS call.
func (c *entityCache) evictNamespace(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			c.deleteKeys(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache namespace scan failed", zap.String("prefix", prefix), zap.Error(err))
	}
	if len(keys) > 0 {
		c.deleteKeys(ctx, keys)
	}
}

func (c *entityCache) deleteKeys(ctx context.Context, keys []string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache namespace evict failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}

func userKey(id int64) string {
	return fmt.Sprintf("%s%d", userKeyPrefix, id)
}

func cardKey(id int64) string {
	return fmt.Sprintf("%s%d", cardKeyPrefix, id)
}

func cardsKey(ownerID int64) string {
	return fmt.Sprintf("%s%d", cardsKeyPrefix, ownerID)
}

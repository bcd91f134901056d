package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TIANLI0/MatteKit/config"
	"github.com/TIANLI0/MatteKit/model"
	"github.com/TIANLI0/MatteKit/utils"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const keyPrefix = "cutout:"

// ResultCache 抠图结果缓存，未命中时返回 (nil, nil)
type ResultCache interface {
	Get(ctx context.Context, key string) (*model.CutoutResult, error)
	Set(ctx context.Context, key string, result *model.CutoutResult) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg *config.RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get 从缓存获取抠图结果
func (c *RedisCache) Get(ctx context.Context, key string) (*model.CutoutResult, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 缓存未命中
		}
		return nil, err
	}

	var result model.CutoutResult
	if err := json.Unmarshal(data, &result); err != nil {
		utils.Logger.Error("failed to unmarshal cutout result",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &result, nil
}

// Set 写入缓存
func (c *RedisCache) Set(ctx context.Context, key string, result *model.CutoutResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type memoryEntry struct {
	result    *model.CutoutResult
	expiresAt time.Time
}

// MemoryCache 进程内缓存，Redis 不可用时使用；过期条目由 cron 任务定期清理
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	cron    *cron.Cron
}

// NewMemoryCache sweepSpec 为空时不启动清理任务（只在读取时判断过期）
func NewMemoryCache(ttl time.Duration, sweepSpec string) (*MemoryCache, error) {
	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	if sweepSpec == "" {
		return c, nil
	}

	c.cron = cron.New()
	if _, err := c.cron.AddFunc(sweepSpec, func() {
		if n := c.Sweep(); n > 0 {
			utils.Logger.Debug("memory cache swept", zap.Int("evicted", n))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep spec %q: %w", sweepSpec, err)
	}
	c.cron.Start()
	return c, nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*model.CutoutResult, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		return nil, nil
	}
	return e.result, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, result *model.CutoutResult) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{result: result, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Sweep 删除过期条目，返回删除数量
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len 当前条目数（含未清理的过期条目）
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
	return nil
}

func (c *MemoryCache) expired(e memoryEntry) bool {
	return c.ttl > 0 && !c.now().Before(e.expiresAt)
}

// 检查接口实现
var (
	_ ResultCache = (*RedisCache)(nil)
	_ ResultCache = (*MemoryCache)(nil)
)

package scraper

import (
	"container/list"
	"context"
	"sync"
	"time"

	"wordmap/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// PageCache：按 URL 缓存页面正文
type PageCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, val string)
}

// 文档注释：本地 LRU 缓存（URL 为键）
// 背景：中断后重跑同一批地域时大量页面重复抓取，进程内缓存可直接复用；TTL 可调。
// 约束：容量按条目计；过期条目在读取时淘汰。
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type kv struct {
	k   string
	v   string
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU) Get(_ context.Context, k string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(kv)
		if c.now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	return "", false
}

func (c *LRU) Set(_ context.Context, k, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := c.now().Add(c.ttl)
	if e, ok := c.dict[k]; ok {
		e.Value = kv{k: k, v: v, exp: exp}
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(kv{k: k, v: v, exp: exp})
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		if back == nil {
			break
		}
		delete(c.dict, back.Value.(kv).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// RedisCache：跨进程共享的页面缓存
// 约束：Redis 不可用时读取视为未命中，写入错误忽略。
type RedisCache struct {
	RC     *redis.Client
	TTL    time.Duration
	Prefix string
}

func (c *RedisCache) Get(ctx context.Context, k string) (string, bool) {
	s, err := c.RC.Get(ctx, c.Prefix+k).Result()
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

func (c *RedisCache) Set(ctx context.Context, k, v string) {
	_ = c.RC.Set(ctx, c.Prefix+k, v, c.TTL).Err()
}

// Tiered：先查本地 LRU，再查 Redis；Redis 命中时回填本地
type Tiered struct {
	Local  *LRU
	Remote PageCache
}

func (t *Tiered) Get(ctx context.Context, k string) (string, bool) {
	if t.Local != nil {
		if v, ok := t.Local.Get(ctx, k); ok {
			metrics.ScrapeCacheHitsTotal.Inc()
			return v, true
		}
	}
	if t.Remote != nil {
		if v, ok := t.Remote.Get(ctx, k); ok {
			if t.Local != nil {
				t.Local.Set(ctx, k, v)
			}
			metrics.ScrapeCacheHitsTotal.Inc()
			return v, true
		}
	}
	metrics.ScrapeCacheMissesTotal.Inc()
	return "", false
}

func (t *Tiered) Set(ctx context.Context, k, v string) {
	if t.Local != nil {
		t.Local.Set(ctx, k, v)
	}
	if t.Remote != nil {
		t.Remote.Set(ctx, k, v)
	}
}

// NewPageCache：rc 为 nil 时只用本地 LRU
func NewPageCache(rc *redis.Client, capacity int, ttl time.Duration) *Tiered {
	t := &Tiered{Local: NewLRU(capacity, ttl)}
	if rc != nil {
		t.Remote = &RedisCache{RC: rc, TTL: ttl, Prefix: "wordmap:page:"}
	}
	return t
}

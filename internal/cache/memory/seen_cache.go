package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/pkg/metrics"
)

var _ ports.DeliveryCache = (*SeenCache)(nil)

type entry struct {
	id        string
	expiresAt time.Time
}

// SeenCache — LRU с TTL для ключей уже сохранённых записей.
type SeenCache struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[string]*list.Element

	mu sync.Mutex
}

func NewSeenCache(capacity int, ttl time.Duration) *SeenCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &SeenCache{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *SeenCache) Seen(_ context.Context, id string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[id]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return false
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		metrics.CacheSize.Set(float64(len(c.index)))
		return false
	}
	c.ll.MoveToFront(elem)

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return true
}

func (c *SeenCache) MarkSeen(_ context.Context, ids ...string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		c.put(id, now)
	}
	metrics.CacheSize.Set(float64(len(c.index)))
}

func (c *SeenCache) WarmUp(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.MarkSeen(ctx, id)
	}
	return nil
}

// Len — текущее число ключей (вместе с ещё не вычищенными просроченными).
func (c *SeenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// put — вызывается под c.mu.
func (c *SeenCache) put(id string, now time.Time) {
	if id == "" {
		return
	}
	if elem, ok := c.index[id]; ok {
		elem.Value.(*entry).expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return
	}

	c.pruneExpiredFromBack(now)

	c.index[id] = c.ll.PushFront(&entry{id: id, expiresAt: c.expiryFrom(now)})
	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
}

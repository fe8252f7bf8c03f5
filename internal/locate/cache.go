package locate

import (
	"container/list"
	"sync"
	"time"
)

// 文档注释：进程内 LRU（geohash 为键）
// 背景：地图悬停/点击会在短时间内反复查询相邻坐标，缓存命中结果（含未命中）降低逐多边形判定开销。
// 约束：容量与 TTL 由调用方决定；索引重建时随新 Locator 一起丢弃。
type lru struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
}

type entry struct {
	k   string
	v   Match
	ok  bool
	exp time.Time
}

func newLRU(capacity int, ttl time.Duration) *lru {
	if capacity <= 0 {
		capacity = 4096
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &lru{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element)}
}

func (c *lru) get(k string) (Match, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dict[k]
	if !ok {
		return Match{}, false, false
	}
	it := e.Value.(entry)
	if time.Now().After(it.exp) {
		c.lst.Remove(e)
		delete(c.dict, k)
		return Match{}, false, false
	}
	c.lst.MoveToFront(e)
	return it.v, it.ok, true
}

func (c *lru) set(k string, v Match, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry{k: k, v: v, ok: ok, exp: time.Now().Add(c.ttl)}
	if e, found := c.dict[k]; found {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry).k)
		c.lst.Remove(back)
	}
}

func (c *lru) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

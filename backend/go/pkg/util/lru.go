package util

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// CacheConfig 用于配置 LRU 缓存的行为。
type CacheConfig[K comparable, V any] struct {
	// Capacity 是缓存的最大元素数量，必须大于 0。
	Capacity int
	// TTL 是元素自最后一次访问起的存活时间。如果为 0，则元素永不过期。
	TTL time.Duration
	// OnEvict 在元素因容量、过期或 Delete 被移除时调用（在锁外执行）。
	OnEvict func(key K, value V)
	// Now 用于测试时替换时钟，默认为 time.Now。
	Now func() time.Time
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	expiration time.Time
}

// LRUCache 是一个支持泛型、按访问续期 TTL 的线程安全 LRU 缓存。
// 会话表使用它来限制内存中同时存在的会话数量。
type LRUCache[K comparable, V any] struct {
	config CacheConfig[K, V]
	ll     *list.List
	cache  map[K]*list.Element
	lock   sync.Mutex
}

// NewWithConfig 使用指定的配置创建一个 LRU 缓存实例。
func NewWithConfig[K comparable, V any](config CacheConfig[K, V]) (*LRUCache[K, V], error) {
	if config.Capacity <= 0 {
		return nil, fmt.Errorf("Capacity 必须大于 0")
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &LRUCache[K, V]{
		config: config,
		ll:     list.New(),
		cache:  make(map[K]*list.Element),
	}, nil
}

// Get 根据键获取一个值。命中时刷新其 TTL 并标记为最近使用。
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	var evicted []*entry[K, V]
	defer func() { c.notify(evicted) }()

	c.lock.Lock()
	defer c.lock.Unlock()

	element, ok := c.cache[key]
	if !ok {
		var zeroV V
		return zeroV, false
	}

	e := element.Value.(*entry[K, V])
	if c.expired(e) {
		evicted = append(evicted, c.removeElement(element))
		var zeroV V
		return zeroV, false
	}

	c.touch(e)
	c.ll.MoveToFront(element)
	return e.value, true
}

// Put 向缓存中添加或更新一个键值对，超出容量时淘汰最久未使用的元素。
func (c *LRUCache[K, V]) Put(key K, value V) {
	var evicted []*entry[K, V]
	defer func() { c.notify(evicted) }()

	c.lock.Lock()
	defer c.lock.Unlock()

	if element, ok := c.cache[key]; ok {
		e := element.Value.(*entry[K, V])
		e.value = value
		c.touch(e)
		c.ll.MoveToFront(element)
		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.touch(e)
	c.cache[key] = c.ll.PushFront(e)

	for c.ll.Len() > c.config.Capacity {
		evicted = append(evicted, c.removeElement(c.ll.Back()))
	}
}

// Delete 移除指定的键，返回它是否存在。
func (c *LRUCache[K, V]) Delete(key K) bool {
	var evicted []*entry[K, V]
	defer func() { c.notify(evicted) }()

	c.lock.Lock()
	defer c.lock.Unlock()

	element, ok := c.cache[key]
	if !ok {
		return false
	}
	evicted = append(evicted, c.removeElement(element))
	return true
}

// PurgeExpired 主动移除所有已过期的元素，返回移除的数量。
func (c *LRUCache[K, V]) PurgeExpired() int {
	var evicted []*entry[K, V]
	defer func() { c.notify(evicted) }()

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.config.TTL <= 0 {
		return 0
	}
	// 从最久未使用的一端开始，遇到未过期的元素即可停止。
	for element := c.ll.Back(); element != nil; {
		e := element.Value.(*entry[K, V])
		if !c.expired(e) {
			break
		}
		prev := element.Prev()
		evicted = append(evicted, c.removeElement(element))
		element = prev
	}
	return len(evicted)
}

// Len 返回当前缓存中的条目数量（可能包含尚未被清理的过期条目）。
func (c *LRUCache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ll.Len()
}

// 以下方法假设已持有锁。

func (c *LRUCache[K, V]) touch(e *entry[K, V]) {
	if c.config.TTL > 0 {
		e.expiration = c.config.Now().Add(c.config.TTL)
	}
}

func (c *LRUCache[K, V]) expired(e *entry[K, V]) bool {
	return c.config.TTL > 0 && c.config.Now().After(e.expiration)
}

func (c *LRUCache[K, V]) removeElement(e *list.Element) *entry[K, V] {
	c.ll.Remove(e)
	en := e.Value.(*entry[K, V])
	delete(c.cache, en.key)
	return en
}

func (c *LRUCache[K, V]) notify(evicted []*entry[K, V]) {
	if c.config.OnEvict == nil {
		return
	}
	for _, e := range evicted {
		c.config.OnEvict(e.key, e.value)
	}
}

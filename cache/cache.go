/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

// Package cache provides a bounded cache that computes every missing value
// once per key, however many callers ask for it concurrently.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// Loader computes the value of a missing key.
type Loader[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value   V
	expires atomic.Int64 // unix nanos, 0 never
}

// call is an in-flight load. Waiters block on done and read value and
// err afterwards.
type call[V any] struct {
	done  chan struct{}
	value V
	err   error

	mu    sync.Mutex
	stale bool
}

// Cache is a size bounded LRU cache with an optional expire-after-access
// time to live. Expired entries are detected on access, there is no
// background sweep.
type Cache[K comparable, V any] struct {
	name     string
	entries  *lru.Cache[K, *entry[V]]
	inflight *xsync.MapOf[K, *call[V]]
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// WithTTL expires entries that were not accessed for ttl.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger sets the logger used for loader failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a cache that holds at most size entries.
func New[K comparable, V any](name string, size int, opts ...Option) (*Cache[K, V], error) {
	o := options{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	entries, err := lru.New[K, *entry[V]](size)
	if err != nil {
		return nil, errors.Wrapf(err, "cache %s", name)
	}
	return &Cache[K, V]{
		name:     name,
		entries:  entries,
		inflight: xsync.NewMapOf[K, *call[V]](),
		ttl:      o.ttl,
		now:      o.now,
		logger:   o.logger.With(zap.String("cache", name)),
	}, nil
}

// Name returns the name of the cache.
func (c *Cache[K, V]) Name() string {
	return c.name
}

// Get returns the value of key. On a miss, load runs once for all
// concurrent callers of the same key; they all receive its result. Errors
// are returned to every waiter and never stored.
func (c *Cache[K, V]) Get(ctx context.Context, key K, load Loader[V]) (V, error) {
	if v, ok := c.lookup(key); ok {
		RequestsTotal.WithLabelValues(c.name, "hit").Inc()
		return v, nil
	}

	cl := &call[V]{done: make(chan struct{})}
	if other, loaded := c.inflight.LoadOrStore(key, cl); loaded {
		RequestsTotal.WithLabelValues(c.name, "coalesced").Inc()
		return c.wait(ctx, other)
	}

	// A load that finished between lookup and LoadOrStore already stored
	// its value.
	if v, ok := c.lookup(key); ok {
		c.finish(key, cl, v, nil)
		RequestsTotal.WithLabelValues(c.name, "hit").Inc()
		return v, nil
	}

	RequestsTotal.WithLabelValues(c.name, "miss").Inc()
	var (
		v   V
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				c.finish(key, cl, v, errors.Errorf("cache %s: loader panicked: %v", c.name, r))
				panic(r)
			}
		}()
		v, err = load(ctx)
	}()
	if err != nil {
		c.logger.Warn("load failed", zap.Any("key", key), zap.Error(err))
	}
	c.finish(key, cl, v, err)
	return v, err
}

func (c *Cache[K, V]) wait(ctx context.Context, cl *call[V]) (V, error) {
	select {
	case <-cl.done:
		return cl.value, cl.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// finish stores a successful result unless the call was invalidated,
// removes the call from the in-flight table and wakes the waiters.
func (c *Cache[K, V]) finish(key K, cl *call[V], v V, err error) {
	cl.value, cl.err = v, err

	cl.mu.Lock()
	if err == nil && !cl.stale {
		c.store(key, v)
	}
	cl.mu.Unlock()

	c.inflight.Compute(key, func(old *call[V], loaded bool) (*call[V], bool) {
		return old, !loaded || old == cl
	})
	close(cl.done)
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if c.ttl > 0 {
		now := c.now()
		if exp := e.expires.Load(); exp != 0 && now.UnixNano() >= exp {
			var zero V
			return zero, false
		}
		e.expires.Store(now.Add(c.ttl).UnixNano())
	}
	return e.value, true
}

func (c *Cache[K, V]) store(key K, v V) {
	e := &entry[V]{value: v}
	if c.ttl > 0 {
		e.expires.Store(c.now().Add(c.ttl).UnixNano())
	}
	c.entries.Add(key, e)
}

// Invalidate removes key. A load of key that is in flight does not store
// its result, and the next Get starts a new load.
func (c *Cache[K, V]) Invalidate(key K) {
	if cl, ok := c.inflight.LoadAndDelete(key); ok {
		cl.mu.Lock()
		cl.stale = true
		cl.mu.Unlock()
	}
	c.entries.Remove(key)
	InvalidationsTotal.WithLabelValues(c.name).Inc()
}

// InvalidateFunc removes every key for which pred returns true.
func (c *Cache[K, V]) InvalidateFunc(pred func(K) bool) {
	var keys []K
	c.inflight.Range(func(key K, _ *call[V]) bool {
		if pred(key) {
			keys = append(keys, key)
		}
		return true
	})
	for _, key := range c.entries.Keys() {
		if pred(key) {
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		c.Invalidate(key)
	}
}

// InvalidateAll removes every entry and marks all in-flight loads stale.
func (c *Cache[K, V]) InvalidateAll() {
	c.inflight.Range(func(key K, cl *call[V]) bool {
		cl.mu.Lock()
		cl.stale = true
		cl.mu.Unlock()
		c.inflight.Delete(key)
		return true
	})
	c.entries.Purge()
	InvalidationsTotal.WithLabelValues(c.name).Inc()
}

// Len returns the number of stored entries, including expired ones that
// were not accessed since they expired.
func (c *Cache[K, V]) Len() int {
	return c.entries.Len()
}

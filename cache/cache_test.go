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

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type key struct {
	typeID int
	start  int64
}

func counting(calls *atomic.Int32, v string) Loader[string] {
	return func(context.Context) (string, error) {
		calls.Add(1)
		return v, nil
	}
}

func TestCache_Get(t *testing.T) {
	c, err := New[key, string]("test", 10)
	require.NoError(t, err)
	ctx := context.Background()

	var calls atomic.Int32
	v, err := c.Get(ctx, key{9, 0}, counting(&calls, "a"))
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, err = c.Get(ctx, key{9, 0}, counting(&calls, "b"))
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, int32(1), calls.Load())

	v, err = c.Get(ctx, key{9, 10}, counting(&calls, "c"))
	require.NoError(t, err)
	assert.Equal(t, "c", v)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, c.Len())
}

func TestCache_ComputeOnce(t *testing.T) {
	c, err := New[key, string]("test", 10)
	require.NoError(t, err)

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), key{1, 0}, load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "value", v)
	}
}

func TestCache_UnrelatedKeysLoadInParallel(t *testing.T) {
	c, err := New[key, string]("test", 10)
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = c.Get(context.Background(), key{1, 0}, func(context.Context) (string, error) {
			close(started)
			<-release
			return "slow", nil
		})
	}()
	<-started

	// Must not wait for the slow load of the other key.
	v, err := c.Get(context.Background(), key{2, 0}, func(context.Context) (string, error) {
		return "fast", nil
	})
	close(release)
	require.NoError(t, err)
	assert.Equal(t, "fast", v)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c, err := New[key, string]("test", 10)
	require.NoError(t, err)
	ctx := context.Background()

	errStore := errors.New("no case open")
	var calls atomic.Int32
	_, err = c.Get(ctx, key{1, 0}, func(context.Context) (string, error) {
		calls.Add(1)
		return "", errStore
	})
	assert.Equal(t, errStore, err)
	assert.Equal(t, 0, c.Len())

	v, err := c.Get(ctx, key{1, 0}, counting(&calls, "ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_InvalidateInFlight(t *testing.T) {
	c, err := New[key, string]("test", 10)
	require.NoError(t, err)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string)
	go func() {
		v, _ := c.Get(ctx, key{1, 0}, func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
		done <- v
	}()
	<-started
	c.Invalidate(key{1, 0})
	close(release)
	assert.Equal(t, "old", <-done)
	assert.Equal(t, 0, c.Len())

	var calls atomic.Int32
	v, err := c.Get(ctx, key{1, 0}, counting(&calls, "new"))
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCache_Invalidate(t *testing.T) {
	c, err := New[key, string]("test", 10)
	require.NoError(t, err)
	ctx := context.Background()

	var calls atomic.Int32
	for _, k := range []key{{1, 0}, {1, 10}, {2, 0}} {
		_, err := c.Get(ctx, k, counting(&calls, "v"))
		require.NoError(t, err)
	}

	c.InvalidateFunc(func(k key) bool { return k.typeID == 1 })
	assert.Equal(t, 1, c.Len())

	c.Invalidate(key{2, 0})
	assert.Equal(t, 0, c.Len())

	_, err = c.Get(ctx, key{3, 0}, counting(&calls, "v"))
	require.NoError(t, err)
	c.InvalidateAll()
	assert.Equal(t, 0, c.Len())
}

func TestCache_TTL(t *testing.T) {
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c, err := New[key, string]("views", 15, WithTTL(2*time.Minute), WithClock(clock))
	require.NoError(t, err)
	ctx := context.Background()

	var calls atomic.Int32
	_, err = c.Get(ctx, key{1, 0}, counting(&calls, "v"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		advance   time.Duration
		wantCalls int32
	}{
		{"within ttl", 90 * time.Second, 1},
		{"access extends ttl", 90 * time.Second, 1},
		{"expired", 3 * time.Minute, 2},
		{"reloaded", time.Second, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = now.Add(tt.advance)
			_, err := c.Get(ctx, key{1, 0}, counting(&calls, "v"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestCache_Size(t *testing.T) {
	c, err := New[key, string]("test", 2)
	require.NoError(t, err)
	ctx := context.Background()

	var calls atomic.Int32
	for i := int64(0); i < 3; i++ {
		_, err := c.Get(ctx, key{1, i}, counting(&calls, "v"))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	_, err = c.Get(ctx, key{1, 0}, counting(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())

	_, err = New[key, string]("invalid", 0)
	assert.Error(t, err)
}

func TestCache_WaiterCancelled(t *testing.T) {
	c, err := New[key, string]("test", 10)
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	go func() {
		_, _ = c.Get(context.Background(), key{1, 0}, func(context.Context) (string, error) {
			close(started)
			<-release
			return "v", nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, key{1, 0}, func(context.Context) (string, error) {
		t.Error("loader must not run twice")
		return "", nil
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

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

package casestore

import (
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// Event is a mutation of the store.
type Event interface {
	event()
}

// ModuleDataEvent announces newly posted artifacts of one type in one data
// source.
type ModuleDataEvent struct {
	ArtifactTypeID int
	DataSourceID   int64
	Count          int
}

// ContentEvent announces a newly added file.
type ContentEvent struct {
	File *File
}

func (ModuleDataEvent) event() {}
func (ContentEvent) event()    {}

// Bus delivers store events to subscribers. Publish calls every subscriber
// synchronously; subscribers must not rely on the order of events.
type Bus struct {
	subscribers *xsync.MapOf[uuid.UUID, func(Event)]
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: xsync.NewMapOf[uuid.UUID, func(Event)]()}
}

// Subscribe registers fn for all future events. The returned function
// removes the subscription.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := uuid.New()
	b.subscribers.Store(id, fn)
	return func() {
		b.subscribers.Delete(id)
	}
}

// Publish delivers evt to all subscribers.
func (b *Bus) Publish(evt Event) {
	b.subscribers.Range(func(_ uuid.UUID, fn func(Event)) bool {
		fn(evt)
		return true
	})
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	return b.subscribers.Size()
}

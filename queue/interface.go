/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package queue provides the three queue variants the reactor builds its
// work-handoff paths on: a doubling Normal queue for single-threaded use,
// a lock-free SPSC ring for the loop's own work queue, and a bounded MPMC
// ring (Vyukov's sequence-per-slot algorithm) for cross-goroutine handoff
// into the loop.
package queue

// Queue is the common shape every variant in this package implements.
// Implementations differ in their concurrency guarantees, documented on
// each constructor, not in this interface.
type Queue interface {
	Enqueue(v interface{}) bool
	Dequeue() (interface{}, bool)
	Peek() (interface{}, bool)
	Size() int
	Empty() bool
	Full() bool
	Capacity() int
	Clear()
	ForEach(fn func(v interface{}))
	Destroy()
}

// ElementFreeFunc is invoked by Clear on every element still queued, letting
// callers return pool-owned buffers instead of leaking them.
type ElementFreeFunc func(v interface{})

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

package queue

import "sync"

// Normal is a circular-buffer queue that doubles its capacity on overflow,
// giving amortised O(1) Enqueue/Dequeue. Safe for concurrent use; a single
// mutex guards every operation.
type Normal struct {
	mu       sync.Mutex
	buf      []interface{}
	head     int
	tail     int
	size     int
	freeFunc ElementFreeFunc
}

// NewNormal returns a Normal queue with the given initial capacity (rounded
// up to at least 1). onFree, if non-nil, is invoked on every element still
// queued when Clear is called.
func NewNormal(capacity int, onFree ElementFreeFunc) *Normal {
	if capacity < 1 {
		capacity = 1
	}
	return &Normal{
		buf:      make([]interface{}, capacity),
		freeFunc: onFree,
	}
}

func (q *Normal) grow() {
	newCap := len(q.buf) * 2
	nb := make([]interface{}, newCap)
	for i := 0; i < q.size; i++ {
		nb[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = nb
	q.head = 0
	q.tail = q.size
}

// Enqueue appends v to the tail, growing the backing array if full. Always
// returns true: Normal never rejects a write.
func (q *Normal) Enqueue(v interface{}) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.buf) {
		q.grow()
	}

	q.buf[q.tail] = v
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	return true
}

// Dequeue removes and returns the element at the head, or (nil, false) if
// empty.
func (q *Normal) Dequeue() (interface{}, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil, false
	}

	v := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// Peek returns the head element without removing it.
func (q *Normal) Peek() (interface{}, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil, false
	}
	return q.buf[q.head], true
}

// Size returns the number of queued elements.
func (q *Normal) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Empty reports whether the queue holds no elements.
func (q *Normal) Empty() bool {
	return q.Size() == 0
}

// Full always reports false: Normal grows instead of rejecting writes.
func (q *Normal) Full() bool {
	return false
}

// Capacity returns the current backing array length, not a fixed ceiling.
func (q *Normal) Capacity() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Clear removes every element, invoking the configured free hook on each
// one first.
func (q *Normal) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.freeFunc != nil {
		for i := 0; i < q.size; i++ {
			q.freeFunc(q.buf[(q.head+i)%len(q.buf)])
		}
	}

	for i := range q.buf {
		q.buf[i] = nil
	}
	q.head, q.tail, q.size = 0, 0, 0
}

// ForEach visits every queued element from head to tail without removing
// them.
func (q *Normal) ForEach(fn func(v interface{})) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := 0; i < q.size; i++ {
		fn(q.buf[(q.head+i)%len(q.buf)])
	}
}

// Destroy releases the backing array. The queue must not be used afterward.
func (q *Normal) Destroy() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf = nil
	q.head, q.tail, q.size = 0, 0, 0
}

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

import "sync/atomic"

// SPSC is a lock-free bounded ring buffer for exactly one producer and one
// consumer goroutine. Capacity is rounded up to a power of two so index
// wraparound is a mask instead of a modulo.
//
// The invariant the implementation maintains is (tail-head) mod capacity ==
// size: the producer writes elements[tail] before release-storing tail+1;
// the consumer acquire-loads tail before reading elements[head]. Using
// anything but one producer and one consumer breaks this invariant.
type SPSC struct {
	mask     uint64
	elements []interface{}
	head     uint64 // consumer-owned
	_        [7]uint64
	tail     uint64 // producer-owned, release-stored
	_        [7]uint64
	freeFunc ElementFreeFunc
}

// NewSPSC returns an SPSC queue with capacity rounded up to the next power
// of two (minimum 2).
func NewSPSC(capacity int, onFree ElementFreeFunc) *SPSC {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &SPSC{
		mask:     uint64(size - 1),
		elements: make([]interface{}, size),
		freeFunc: onFree,
	}
}

// Enqueue is called only by the producer goroutine. It returns false if the
// ring is full.
func (q *SPSC) Enqueue(v interface{}) bool {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)

	if tail-head >= uint64(len(q.elements)) {
		return false
	}

	q.elements[tail&q.mask] = v
	atomic.StoreUint64(&q.tail, tail+1)
	return true
}

// Dequeue is called only by the consumer goroutine. It returns (nil, false)
// if the ring is empty.
func (q *SPSC) Dequeue() (interface{}, bool) {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)

	if head == tail {
		return nil, false
	}

	v := q.elements[head&q.mask]
	q.elements[head&q.mask] = nil
	atomic.StoreUint64(&q.head, head+1)
	return v, true
}

// Peek returns the head element without removing it. Consumer-side only.
func (q *SPSC) Peek() (interface{}, bool) {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	if head == tail {
		return nil, false
	}
	return q.elements[head&q.mask], true
}

// Size returns a snapshot of (tail-head); may be stale the instant it
// returns under concurrent access from the producer or consumer.
func (q *SPSC) Size() int {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	return int(tail - head)
}

// Empty reports whether the queue currently holds no elements.
func (q *SPSC) Empty() bool {
	return q.Size() == 0
}

// Full reports whether the queue is at capacity.
func (q *SPSC) Full() bool {
	return q.Size() == len(q.elements)
}

// Capacity returns the fixed ring size.
func (q *SPSC) Capacity() int {
	return len(q.elements)
}

// Clear drains the queue from the consumer side, invoking the free hook on
// each remaining element. Must only be called when the producer is
// quiescent.
func (q *SPSC) Clear() {
	for {
		v, ok := q.Dequeue()
		if !ok {
			return
		}
		if q.freeFunc != nil {
			q.freeFunc(v)
		}
	}
}

// ForEach visits every queued element from head to tail without removing
// them. Must only be called when both producer and consumer are
// quiescent.
func (q *SPSC) ForEach(fn func(v interface{})) {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	for i := head; i != tail; i++ {
		fn(q.elements[i&q.mask])
	}
}

// Destroy releases the backing array.
func (q *SPSC) Destroy() {
	q.elements = nil
}

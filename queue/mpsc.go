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

// mpscSlot carries a sequence number alongside its value. A slot is ready
// for a producer to write when seq == the slot's index; ready for a
// consumer to read when seq == index+1. This is Dmitry Vyukov's bounded
// MPMC queue algorithm: each slot's own sequence counter, not a single
// global head/tail pair, is what lets multiple producers and multiple
// consumers make progress without a lock.
type mpscSlot struct {
	seq uint64
	val interface{}
}

// MPSC is a bounded multi-producer queue (the ring itself is MPMC-capable;
// the reactor only ever drains it from its own single loop goroutine).
// Capacity is rounded up to a power of two.
type MPSC struct {
	mask     uint64
	slots    []mpscSlot
	enqPos   uint64
	deqPos   uint64
	freeFunc ElementFreeFunc
}

// NewMPSC returns an MPSC queue with capacity rounded up to the next power
// of two (minimum 2).
func NewMPSC(capacity int, onFree ElementFreeFunc) *MPSC {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}

	q := &MPSC{
		mask:     uint64(size - 1),
		slots:    make([]mpscSlot, size),
		freeFunc: onFree,
	}
	for i := range q.slots {
		q.slots[i].seq = uint64(i)
	}
	return q
}

// Enqueue may be called concurrently by any number of producer goroutines.
// Returns false if the ring is full.
func (q *MPSC) Enqueue(v interface{}) bool {
	pos := atomic.LoadUint64(&q.enqPos)

	for {
		slot := &q.slots[pos&q.mask]
		seq := atomic.LoadUint64(&slot.seq)

		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if atomic.CompareAndSwapUint64(&q.enqPos, pos, pos+1) {
				slot.val = v
				atomic.StoreUint64(&slot.seq, pos+1)
				return true
			}
			pos = atomic.LoadUint64(&q.enqPos)
		case diff < 0:
			return false
		default:
			pos = atomic.LoadUint64(&q.enqPos)
		}
	}
}

// Dequeue may be called concurrently by any number of consumer goroutines.
// Returns (nil, false) if the ring is empty.
func (q *MPSC) Dequeue() (interface{}, bool) {
	pos := atomic.LoadUint64(&q.deqPos)

	for {
		slot := &q.slots[pos&q.mask]
		seq := atomic.LoadUint64(&slot.seq)

		diff := int64(seq) - int64(pos+1)
		switch {
		case diff == 0:
			if atomic.CompareAndSwapUint64(&q.deqPos, pos, pos+1) {
				v := slot.val
				slot.val = nil
				atomic.StoreUint64(&slot.seq, pos+uint64(len(q.slots)))
				return v, true
			}
			pos = atomic.LoadUint64(&q.deqPos)
		case diff < 0:
			return nil, false
		default:
			pos = atomic.LoadUint64(&q.deqPos)
		}
	}
}

// Peek is not a well-defined operation on a concurrent MPMC ring (the head
// slot can be claimed by another consumer between the read and the
// caller's use of it), so it reports the value opportunistically without
// any delivery guarantee.
func (q *MPSC) Peek() (interface{}, bool) {
	pos := atomic.LoadUint64(&q.deqPos)
	slot := &q.slots[pos&q.mask]
	seq := atomic.LoadUint64(&slot.seq)
	if int64(seq)-int64(pos+1) != 0 {
		return nil, false
	}
	return slot.val, true
}

// Size returns a snapshot difference between the enqueue and dequeue
// cursors; it may be stale immediately under concurrent access.
func (q *MPSC) Size() int {
	enq := atomic.LoadUint64(&q.enqPos)
	deq := atomic.LoadUint64(&q.deqPos)
	return int(enq - deq)
}

// Empty reports whether the queue currently holds no elements.
func (q *MPSC) Empty() bool {
	return q.Size() == 0
}

// Full reports whether the queue is at capacity.
func (q *MPSC) Full() bool {
	return q.Size() == len(q.slots)
}

// Capacity returns the fixed ring size.
func (q *MPSC) Capacity() int {
	return len(q.slots)
}

// Clear drains the queue, invoking the free hook on each remaining
// element. Intended for use once producers and consumers are quiescent.
func (q *MPSC) Clear() {
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

// ForEach is intended for use once producers and consumers are quiescent;
// it drains and replays rather than reading slots in place, since slot
// readiness is concurrency-sensitive.
func (q *MPSC) ForEach(fn func(v interface{})) {
	var drained []interface{}
	for {
		v, ok := q.Dequeue()
		if !ok {
			break
		}
		drained = append(drained, v)
	}
	for _, v := range drained {
		fn(v)
		q.Enqueue(v)
	}
}

// Destroy releases the backing array.
func (q *MPSC) Destroy() {
	q.slots = nil
}

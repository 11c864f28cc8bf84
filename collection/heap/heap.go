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

// Package heap implements a binary min-heap keyed by deadline, used by the
// reactor to keep pending timers ordered by their next fire time.
package heap

import "container/heap"

// Item is a single timer entry tracked by the heap. Deadline orders items;
// Value carries the caller's payload (typically a timer handle). Index is
// maintained by the heap itself and must not be set by callers.
type Item struct {
	Deadline int64
	Value    interface{}
	index    int
}

type items []*Item

func (q items) Len() int            { return len(q) }
func (q items) Less(i, j int) bool  { return q[i].Deadline < q[j].Deadline }
func (q items) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *items) Push(x interface{}) { it := x.(*Item); it.index = len(*q); *q = append(*q, it) }

func (q *items) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}

// Heap is a binary min-heap of *Item ordered by Deadline.
type Heap struct {
	q items
}

// New returns an empty Heap.
func New() *Heap {
	return &Heap{q: make(items, 0)}
}

// Push inserts a new item with the given deadline and value, returning the
// handle used to Remove or Update it later.
func (h *Heap) Push(deadline int64, value interface{}) *Item {
	it := &Item{Deadline: deadline, Value: value}
	heap.Push(&h.q, it)
	return it
}

// Peek returns the item with the smallest deadline without removing it, or
// nil if the heap is empty.
func (h *Heap) Peek() *Item {
	if len(h.q) == 0 {
		return nil
	}
	return h.q[0]
}

// Pop removes and returns the item with the smallest deadline, or nil if the
// heap is empty.
func (h *Heap) Pop() *Item {
	if len(h.q) == 0 {
		return nil
	}
	return heap.Pop(&h.q).(*Item)
}

// Remove removes it from the heap. it must have been returned by Push on
// this heap and not already removed.
func (h *Heap) Remove(it *Item) {
	if it.index < 0 || it.index >= len(h.q) {
		return
	}
	heap.Remove(&h.q, it.index)
}

// Update changes it's deadline and repositions it within the heap.
func (h *Heap) Update(it *Item, deadline int64) {
	if it.index < 0 || it.index >= len(h.q) {
		return
	}
	it.Deadline = deadline
	heap.Fix(&h.q, it.index)
}

// Len returns the number of items currently in the heap.
func (h *Heap) Len() int {
	return len(h.q)
}

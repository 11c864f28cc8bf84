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

// Package mpool implements a slab-style memory pool over power-of-two size
// classes, handing out Block values that carry their own size class so
// Free and Size never need a caller-supplied length.
package mpool

import (
	"sync"
	"sync/atomic"
)

// minClass and maxClass bound the power-of-two size classes the pool
// manages internally; requests above maxClass take the overflow path.
const (
	minClass = 16
	maxClass = 8192
)

func classSizes() []int {
	sizes := make([]int, 0, 10)
	for s := minClass; s <= maxClass; s *= 2 {
		sizes = append(sizes, s)
	}
	return sizes
}

// classFor returns the index into the pool's free-list array for a request
// of n bytes, or -1 if n exceeds maxClass (overflow path).
func classFor(n int) int {
	if n <= 0 {
		return 0
	}
	size := minClass
	idx := 0
	for size < n {
		if size >= maxClass {
			return -1
		}
		size *= 2
		idx++
	}
	return idx
}

// Block is a pool-owned buffer. The zero Block is not usable; obtain one
// from Pool.Alloc. class is the size-class index (-1 for an overflow
// allocation), acting as the hidden header the spec describes: Free and
// Size read it back instead of requiring the caller to repeat the size.
type Block struct {
	Data  []byte
	class int
	pool  *Pool
}

// Len returns the usable length of the block (the originally requested
// size, not the underlying size-class capacity).
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Config configures a Pool at construction time.
type Config struct {
	// ThreadSafe guards every mutating operation with a single mutex when
	// true. Pools shared across goroutines must set this.
	ThreadSafe bool
}

// Stats reports cumulative pool activity. InUse counts blocks currently
// allocated, not bytes.
type Stats struct {
	Allocs    uint64
	Frees     uint64
	Overflows uint64
	InUse     int64
}

// Pool is a slab allocator over fixed power-of-two size classes with an
// overflow path for oversized requests.
type Pool struct {
	mu         sync.Mutex
	threadSafe bool
	classes    []int
	free       [][]*Block

	allocs    uint64
	frees     uint64
	overflows uint64
	inUse     int64
}

// New creates a Pool. A nil Config uses defaults (not thread-safe).
func New(cfg *Config) *Pool {
	sizes := classSizes()

	p := &Pool{
		classes: sizes,
		free:    make([][]*Block, len(sizes)),
	}

	if cfg != nil {
		p.threadSafe = cfg.ThreadSafe
	}

	return p
}

func (p *Pool) lock() {
	if p.threadSafe {
		p.mu.Lock()
	}
}

func (p *Pool) unlock() {
	if p.threadSafe {
		p.mu.Unlock()
	}
}

// Alloc returns a Block of at least n bytes. Alloc(0) returns nil, matching
// the spec's "alloc(0) returns null".
func (p *Pool) Alloc(n int) *Block {
	if n <= 0 {
		return nil
	}

	idx := classFor(n)

	p.lock()
	defer p.unlock()

	if idx < 0 {
		atomic.AddUint64(&p.overflows, 1)
		atomic.AddInt64(&p.inUse, 1)
		return &Block{Data: make([]byte, n), class: -1, pool: p}
	}

	if free := p.free[idx]; len(free) > 0 {
		blk := free[len(free)-1]
		p.free[idx] = free[:len(free)-1]
		blk.Data = blk.Data[:n]
		atomic.AddUint64(&p.allocs, 1)
		atomic.AddInt64(&p.inUse, 1)
		return blk
	}

	atomic.AddUint64(&p.allocs, 1)
	atomic.AddInt64(&p.inUse, 1)
	return &Block{Data: make([]byte, n, p.classes[idx]), class: idx, pool: p}
}

// Free returns blk's storage to the pool. Free(nil) is a no-op. A block
// must not be used after Free.
func (p *Pool) Free(blk *Block) error {
	if blk == nil {
		return nil
	}
	if blk.pool != nil && blk.pool != p {
		return ErrUnknownBlock
	}

	atomic.AddUint64(&p.frees, 1)
	atomic.AddInt64(&p.inUse, -1)

	if blk.class < 0 {
		blk.Data = nil
		return nil
	}

	p.lock()
	defer p.unlock()

	blk.Data = blk.Data[:0]
	p.free[blk.class] = append(p.free[blk.class], blk)
	return nil
}

// Realloc resizes blk to n bytes, allocating a new block and copying the
// overlapping prefix when n no longer fits the current size class.
func (p *Pool) Realloc(blk *Block, n int) (*Block, error) {
	if blk == nil {
		return p.Alloc(n), nil
	}
	if blk.pool != nil && blk.pool != p {
		return nil, ErrUnknownBlock
	}
	if n <= 0 {
		return nil, p.Free(blk)
	}

	if blk.class >= 0 && n <= p.classes[blk.class] {
		blk.Data = blk.Data[:n]
		return blk, nil
	}

	nb := p.Alloc(n)
	copy(nb.Data, blk.Data)
	if err := p.Free(blk); err != nil {
		return nil, err
	}
	return nb, nil
}

// Size reports the usable length of blk, reading it back from the block's
// own bookkeeping rather than requiring the caller to track it.
func Size(blk *Block) int {
	return blk.Len()
}

// Reset rewinds the pool's free-list bookkeeping for reuse. It returns an
// error instead of silently discarding outstanding blocks when any are
// still allocated, since Go cannot express use-after-free safely the way
// the pool's native-language counterpart can get away with.
func (p *Pool) Reset() error {
	p.lock()
	defer p.unlock()

	if atomic.LoadInt64(&p.inUse) > 0 {
		return ErrBlocksOutstanding
	}

	for i := range p.free {
		p.free[i] = nil
	}
	atomic.StoreUint64(&p.allocs, 0)
	atomic.StoreUint64(&p.frees, 0)
	atomic.StoreUint64(&p.overflows, 0)

	return nil
}

// Destroy releases the pool's internal free-lists. The pool must not be
// used afterward.
func (p *Pool) Destroy() {
	p.lock()
	defer p.unlock()

	p.free = nil
}

// Stats returns a snapshot of cumulative pool activity.
func (p *Pool) Stats() Stats {
	return Stats{
		Allocs:    atomic.LoadUint64(&p.allocs),
		Frees:     atomic.LoadUint64(&p.frees),
		Overflows: atomic.LoadUint64(&p.overflows),
		InUse:     atomic.LoadInt64(&p.inUse),
	}
}

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

// Package once provides Thread, a one-shot background goroutine: Start
// guarantees its function runs in exactly one goroutine no matter how many
// times it is called, and Stop lets the caller tear it down cleanly.
package once

import "sync"

// Thread runs a single long-lived goroutine at most once over its lifetime.
// The zero value is ready to use.
type Thread struct {
	start sync.Once
	stop  sync.Once
	mu    sync.Mutex
	done  chan struct{}
}

// Start launches fn in its own goroutine the first time it is called; every
// later call is a no-op, even from concurrent callers. fn receives a done
// channel it should select on to know when Stop has been requested.
func (t *Thread) Start(fn func(done <-chan struct{})) {
	t.start.Do(func() {
		t.mu.Lock()
		t.done = make(chan struct{})
		done := t.done
		t.mu.Unlock()
		go fn(done)
	})
}

// Stop signals the running goroutine to exit. It is safe to call Stop
// multiple times or before Start; later calls are no-ops.
func (t *Thread) Stop() {
	t.stop.Do(func() {
		t.mu.Lock()
		done := t.done
		t.mu.Unlock()
		if done != nil {
			close(done)
		}
	})
}

// Started reports whether Start has already run.
func (t *Thread) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done != nil
}

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

// Package backend abstracts the OS readiness-notification mechanism (epoll,
// kqueue, or a portable poll-based fallback) behind a single interface the
// reactor package drives every turn.
package backend

import "time"

// Event bits describe what a file descriptor became ready for.
type Event uint8

const (
	Readable Event = 1 << iota
	Writable
	Error
	HangUp
)

// Ready is one readiness notification returned by Wait.
type Ready struct {
	Fd     int
	Events Event
}

// Backend is the minimal readiness-notification contract the reactor needs.
// Implementations are not safe for concurrent calls to Wait from more than
// one goroutine; Add/Modify/Remove may be called from any goroutine and must
// be safe to call while a Wait is in progress (epoll and kqueue both allow
// this natively; the poll fallback serializes internally).
type Backend interface {
	// Add registers fd for notification on the given event mask.
	Add(fd int, events Event) error

	// Modify changes the event mask for an already-registered fd.
	Modify(fd int, events Event) error

	// Remove unregisters fd. It is not an error to remove an fd that was
	// never added, or that the OS already dropped (e.g. on close).
	Remove(fd int) error

	// Wait blocks until at least one fd is ready, timeout elapses, or Wake
	// is called, appending ready events to dst and returning the extended
	// slice. A negative timeout blocks indefinitely; zero polls once.
	Wait(dst []Ready, timeout time.Duration) ([]Ready, error)

	// Wake causes a blocked Wait to return immediately, empty-handed. Used
	// by the reactor to interrupt a wait after QueueWork or Timer changes
	// from another goroutine.
	Wake() error

	// Close releases the backend's own resources (epoll/kqueue fd, wake
	// pipe). Registered fds are not closed.
	Close() error
}

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

// Package reactor implements the event loop this tree's transports and the
// MQTT client run on: a single-threaded turn cycle driving a
// reactor/backend readiness multiplexer, a min-heap of timers, and a
// work queue for cross-goroutine scheduling.
package reactor

import (
	"sync/atomic"

	libbck "github.com/nabbar/golib/reactor/backend"
)

// Kind tags a Handle with the transport it represents, so the loop's
// metrics and logging can report on handle population by type without
// a type switch on every handle implementation.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindTCP
	KindUDP
	KindUnix
	KindUnixgram
	KindTLS
	KindWebSocket
)

func (k Kind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindUDP:
		return "udp"
	case KindUnix:
		return "unix"
	case KindUnixgram:
		return "unixgram"
	case KindTLS:
		return "tls"
	case KindWebSocket:
		return "websocket"
	default:
		return "unknown"
	}
}

// Handle is anything the loop can register with its backend: a live file
// descriptor plus the callbacks the turn cycle invokes when that
// descriptor becomes ready, or when the loop is tearing it down.
type Handle interface {
	// FD returns the file descriptor to watch. Must stay stable for the
	// handle's lifetime; create a new Handle to watch a different fd.
	FD() int

	// Kind reports the transport this handle represents.
	Kind() Kind

	// OnReadable is invoked from the loop's own goroutine when FD() became
	// readable. A panic here is recovered and logged; it does not stop
	// the loop.
	OnReadable(l *Loop)

	// OnWritable is invoked from the loop's own goroutine when FD() became
	// writable. A panic here is recovered and logged; it does not stop
	// the loop.
	OnWritable(l *Loop)

	// OnClose is invoked once, from the loop's own goroutine, after the
	// handle has been removed from the backend and will receive no
	// further events. Implementations release their own resources here
	// (closing the underlying fd included).
	OnClose(l *Loop)
}

// HandleState is the bookkeeping every concrete Handle embeds: the
// active/closing/closed state machine spec.md's handle model requires,
// expressed with a single atomic so OnReadable/OnWritable (loop goroutine)
// and a concurrent Close() call (any goroutine) never race over it.
// Embed it by value (its zero value starts active) and never copy it after
// the handle has been registered with a Loop.
type HandleState struct {
	state int32 // 0 = active, 1 = closing, 2 = closed
}

const (
	stateActive int32 = iota
	stateClosing
	stateClosed
)

// MarkClosing transitions active -> closing exactly once, returning true
// the first time it is called. Safe to call from any goroutine.
func (b *HandleState) MarkClosing() bool {
	return atomic.CompareAndSwapInt32(&b.state, stateActive, stateClosing)
}

// MarkClosed transitions closing -> closed exactly once, returning true
// the first time it is called. Only the loop's turn cycle calls this,
// after OnClose has run.
func (b *HandleState) MarkClosed() bool {
	return atomic.CompareAndSwapInt32(&b.state, stateClosing, stateClosed)
}

// Active reports whether the handle is still accepting I/O events.
func (b *HandleState) Active() bool {
	return atomic.LoadInt32(&b.state) == stateActive
}

// Closing reports whether Close has been requested but OnClose has not
// yet run.
func (b *HandleState) Closing() bool {
	return atomic.LoadInt32(&b.state) == stateClosing
}

// Closed reports whether OnClose has already run for this handle.
func (b *HandleState) Closed() bool {
	return atomic.LoadInt32(&b.state) == stateClosed
}

// eventsFor is a small helper concrete handles use to build the backend
// event mask for their current read/write-interest state.
func eventsFor(wantRead, wantWrite bool) libbck.Event {
	var ev libbck.Event
	if wantRead {
		ev |= libbck.Readable
	}
	if wantWrite {
		ev |= libbck.Writable
	}
	return ev
}

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

package reactor

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	liblst "github.com/nabbar/golib/collection/list"
	libhp "github.com/nabbar/golib/collection/heap"
	liblog "github.com/nabbar/golib/logger"
	libq "github.com/nabbar/golib/queue"
	libbck "github.com/nabbar/golib/reactor/backend"
)

// RunMode selects how far Run advances the turn cycle before returning.
type RunMode uint8

const (
	// RunDefault loops turn after turn until Stop is called.
	RunDefault RunMode = iota
	// RunOnce executes exactly one turn, blocking on the backend until at
	// least one event, timer, or work item is ready.
	RunOnce
	// RunNoWait executes exactly one turn without blocking on the backend:
	// only already-ready I/O, due timers, and queued work are processed.
	RunNoWait
)

const defaultMaxWait = time.Second

// Loop is the single-threaded event loop: one goroutine (whichever calls
// Run) owns the backend, the timer heap, and handle dispatch. Every other
// method is safe to call from any goroutine.
type Loop struct {
	be libbck.Backend

	mu      sync.RWMutex
	handles map[int]Handle

	timerMu sync.Mutex
	timers  *libhp.Heap

	work libq.Queue

	closing   *liblst.List
	closingMu sync.Mutex

	stopping int32
	turns    uint64

	logMu sync.RWMutex
	log   liblog.FuncLog

	metrics *Metrics
}

// NewLoop creates a Loop driven by be. The caller owns be's lifetime via
// Loop.Close, which closes it.
func NewLoop(be libbck.Backend) *Loop {
	l := &Loop{
		be:      be,
		handles: make(map[int]Handle),
		timers:  libhp.New(),
		work:    libq.NewMPSC(1024, nil),
		closing: liblst.New(),
		metrics: newMetrics(),
	}
	return l
}

// SetLogger installs the FuncLog consulted for turn-level diagnostics
// (panics recovered from callbacks, backend errors). A nil logger
// discards everything (see logger.Resolve).
func (l *Loop) SetLogger(f liblog.FuncLog) {
	l.logMu.Lock()
	l.log = f
	l.logMu.Unlock()
}

func (l *Loop) logger() liblog.Logger {
	l.logMu.RLock()
	f := l.log
	l.logMu.RUnlock()
	return liblog.Resolve(f)
}

// Metrics returns the loop's Prometheus collector (active handles, turn
// count, turn latency histogram). Register it with a prometheus.Registerer
// to export it.
func (l *Loop) Metrics() *Metrics {
	return l.metrics
}

// Register adds h to the loop, arming the backend for the given initial
// interest (build it with the package-level helper matching your handle's
// needs, e.g. Readable only for a listener).
func (l *Loop) Register(h Handle, events libbck.Event) error {
	if err := l.be.Add(h.FD(), events); err != nil {
		return err
	}

	l.mu.Lock()
	l.handles[h.FD()] = h
	l.mu.Unlock()

	l.metrics.handles.Inc()
	return nil
}

// Modify updates the backend event mask for an already-registered handle.
func (l *Loop) Modify(h Handle, events libbck.Event) error {
	return l.be.Modify(h.FD(), events)
}

// Remove requests h be closed: the backend stops watching its fd
// immediately, and OnClose runs on the loop's own goroutine during this
// turn's (or the next turn's) close-processing step. Safe to call from any
// goroutine, including from within a Handle's own OnReadable/OnWritable.
func (l *Loop) Remove(h Handle) {
	state, ok := h.(interface{ MarkClosing() bool })
	if ok && !state.MarkClosing() {
		return // already closing or closed
	}

	_ = l.be.Remove(h.FD())

	l.mu.Lock()
	delete(l.handles, h.FD())
	l.mu.Unlock()

	l.closingMu.Lock()
	l.closing.PushBack(&liblst.Node{Value: h})
	l.closingMu.Unlock()

	l.metrics.handles.Dec()
	l.wakeForTimers()
}

// QueueWork enqueues fn to run on the loop's own goroutine during its next
// natural turn. Safe to call from any goroutine.
func (l *Loop) QueueWork(fn func()) {
	l.enqueueWork(fn, false)
}

// QueueWorkImmediate enqueues fn like QueueWork, then wakes a blocked Run
// so fn runs as soon as possible rather than waiting for the next
// naturally-occurring event.
func (l *Loop) QueueWorkImmediate(fn func()) {
	l.enqueueWork(fn, true)
}

func (l *Loop) enqueueWork(fn func(), wake bool) {
	for !l.work.Enqueue(fn) {
		runtime.Gosched()
	}
	if wake {
		_ = l.be.Wake()
	}
}

func (l *Loop) wakeForTimers() {
	_ = l.be.Wake()
}

// Stop requests the current or next RunDefault call to return after
// finishing its in-progress turn. Safe to call from any goroutine.
func (l *Loop) Stop() {
	atomic.StoreInt32(&l.stopping, 1)
	_ = l.be.Wake()
}

func (l *Loop) stopRequested() bool {
	return atomic.LoadInt32(&l.stopping) == 1
}

// Close stops the loop (if running) and closes the underlying backend.
// Registered handles are not closed; call Remove on each first if they
// need OnClose to run.
func (l *Loop) Close() error {
	l.Stop()
	return l.be.Close()
}

// Run drives the turn cycle according to mode. RunDefault blocks until
// Stop is called; RunOnce and RunNoWait each execute exactly one turn.
func (l *Loop) Run(mode RunMode) error {
	for {
		if err := l.turn(mode); err != nil {
			return err
		}
		if mode != RunDefault || l.stopRequested() {
			return nil
		}
	}
}

// turn executes spec.md's turn cycle once: drain deferred work, compute a
// timeout from the nearest timer, block on the backend, dispatch I/O,
// fire due timers, then process handles pending close.
func (l *Loop) turn(mode RunMode) error {
	start := time.Now()

	l.drainWork()

	timeout := l.computeTimeout(mode)
	ready, err := l.be.Wait(nil, timeout)
	if err != nil {
		l.logger().Error("backend wait failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	l.dispatch(ready)
	l.fireDueTimers(time.Now())
	l.processClosing()

	atomic.AddUint64(&l.turns, 1)
	l.metrics.turns.Inc()
	l.metrics.turnLatency.Observe(time.Since(start).Seconds())
	return nil
}

func (l *Loop) computeTimeout(mode RunMode) time.Duration {
	if mode == RunNoWait {
		return 0
	}

	deadline, ok := l.nextDeadline()
	if !ok {
		return -1
	}

	d := time.Until(time.Unix(0, deadline))
	if d < 0 {
		return 0
	}
	if d > defaultMaxWait {
		return defaultMaxWait
	}
	return d
}

func (l *Loop) drainWork() {
	for {
		v, ok := l.work.Dequeue()
		if !ok {
			return
		}
		fn, _ := v.(func())
		if fn == nil {
			continue
		}
		l.runRecovered("work", fn)
	}
}

func (l *Loop) dispatch(ready []libbck.Ready) {
	for _, r := range ready {
		l.mu.RLock()
		h, ok := l.handles[r.Fd]
		l.mu.RUnlock()
		if !ok {
			continue
		}

		if r.Events&(libbck.Readable|libbck.HangUp|libbck.Error) != 0 {
			l.runRecovered("readable", func() { h.OnReadable(l) })
		}
		if r.Events&libbck.Writable != 0 {
			l.runRecovered("writable", func() { h.OnWritable(l) })
		}
	}
}

func (l *Loop) processClosing() {
	l.closingMu.Lock()
	defer l.closingMu.Unlock()

	l.closing.ForEachSafe(func(n *liblst.Node) {
		h, ok := n.Value.(Handle)
		if !ok {
			return
		}
		l.closing.Remove(n)
		l.runRecovered("close", func() { h.OnClose(l) })

		if st, ok := h.(interface{ MarkClosed() bool }); ok {
			st.MarkClosed()
		}
	})
}

// runRecovered invokes fn, logging and continuing rather than propagating
// a panic: one misbehaving handle or timer must not take the whole loop
// down. This is the resolved Open Question for timer callbacks, applied
// uniformly to every per-turn callback the loop invokes.
func (l *Loop) runRecovered(stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger().Error("recovered panic in reactor callback", map[string]interface{}{
				"stage": stage,
				"panic": r,
			})
		}
	}()
	fn()
}

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
	"time"

	libhp "github.com/nabbar/golib/collection/heap"
)

// Timer is a scheduled callback owned by a Loop's timer heap. Zero value is
// not usable; obtain one from Loop.AddTimer.
type Timer struct {
	loop   *Loop
	item   *libhp.Item
	period time.Duration
	fn     func(now time.Time)
}

// Cancel removes the timer from its Loop. Safe to call more than once, and
// safe to call from the timer's own callback.
func (t *Timer) Cancel() {
	t.loop.cancelTimer(t)
}

// AddTimer schedules fn to run after 'after' elapses. When period is
// non-zero, fn re-runs every period thereafter until Cancel is called; the
// re-arm is drift-free, computed as the previous deadline plus period
// rather than now plus period, so a slow turn does not accumulate delay
// across firings.
func (l *Loop) AddTimer(after, period time.Duration, fn func(now time.Time)) *Timer {
	t := &Timer{loop: l, period: period, fn: fn}

	l.timerMu.Lock()
	deadline := time.Now().Add(after).UnixNano()
	t.item = l.timers.Push(deadline, t)
	l.timerMu.Unlock()

	l.wakeForTimers()
	return t
}

func (l *Loop) cancelTimer(t *Timer) {
	l.timerMu.Lock()
	if t.item != nil {
		l.timers.Remove(t.item)
		t.item = nil
	}
	l.timerMu.Unlock()
}

// nextDeadline returns the next timer's absolute deadline (UnixNano) and
// whether one exists.
func (l *Loop) nextDeadline() (int64, bool) {
	l.timerMu.Lock()
	defer l.timerMu.Unlock()

	it := l.timers.Peek()
	if it == nil {
		return 0, false
	}
	return it.Deadline, true
}

// fireDueTimers pops and runs every timer whose deadline has passed,
// re-arming periodic ones, and reports how many fired.
func (l *Loop) fireDueTimers(now time.Time) int {
	nowNano := now.UnixNano()
	fired := 0

	for {
		l.timerMu.Lock()
		it := l.timers.Peek()
		if it == nil || it.Deadline > nowNano {
			l.timerMu.Unlock()
			break
		}
		l.timers.Pop()
		l.timerMu.Unlock()

		t, _ := it.Value.(*Timer)
		if t == nil {
			continue
		}

		fired++
		l.runRecovered("timer", func() {
			t.fn(now)
		})

		if t.period > 0 {
			l.timerMu.Lock()
			// item may have been cancelled from inside fn; Push only if
			// still live (Cancel clears t.item under the same lock).
			if t.item == it {
				t.item = l.timers.Push(it.Deadline+int64(t.period), t)
			}
			l.timerMu.Unlock()
		} else {
			t.item = nil
		}
	}

	return fired
}

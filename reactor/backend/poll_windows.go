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

//go:build windows

package backend

import (
	"sync"
	"time"

	"golang.org/x/sys/windows"
)

// poll is the Windows fallback backend, built on WSAPoll — the Winsock
// equivalent of poll(2) and the portable primitive golang.org/x/sys exposes
// for this platform. A loopback TCP pair stands in for the self-pipe Wake
// trick the Unix backends use, since Windows has no anonymous pipe usable
// with WSAPoll.
type poll struct {
	mu     sync.Mutex
	fds    map[int]Event
	wakeR  windows.Handle
	wakeW  windows.Handle
	closed bool
}

// NewPoll creates a Backend backed by WSAPoll.
func NewPoll() (Backend, error) {
	r, w, err := wakePair()
	if err != nil {
		return nil, err
	}
	return &poll{fds: map[int]Event{}, wakeR: r, wakeW: w}, nil
}

func (p *poll) Add(fd int, events Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fds[fd] = events
	return nil
}

func (p *poll) Modify(fd int, events Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fds[fd] = events
	return nil
}

func (p *poll) Remove(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.fds, fd)
	return nil
}

func toWSAEvents(ev Event) int16 {
	var m int16
	if ev&Readable != 0 {
		m |= windows.POLLIN
	}
	if ev&Writable != 0 {
		m |= windows.POLLOUT
	}
	return m
}

func (p *poll) Wait(dst []Ready, timeout time.Duration) ([]Ready, error) {
	p.mu.Lock()
	fds := make([]windows.WSAPollFd, 0, len(p.fds)+1)
	fds = append(fds, windows.WSAPollFd{Fd: windows.Handle(p.wakeR), Events: windows.POLLIN})
	order := make([]int, 0, len(p.fds))
	for fd, ev := range p.fds {
		fds = append(fds, windows.WSAPollFd{Fd: windows.Handle(fd), Events: toWSAEvents(ev)})
		order = append(order, fd)
	}
	p.mu.Unlock()

	ms := int32(-1)
	if timeout >= 0 {
		ms = int32(timeout / time.Millisecond)
	}

	n, err := windows.WSAPoll(fds, ms)
	if err != nil {
		return dst, err
	}
	if n == 0 {
		return dst, nil
	}

	if fds[0].REvents != 0 {
		p.drainWake()
	}
	for i, fd := range order {
		re := fds[i+1].REvents
		if re == 0 {
			continue
		}
		var ev Event
		if re&windows.POLLIN != 0 {
			ev |= Readable
		}
		if re&windows.POLLOUT != 0 {
			ev |= Writable
		}
		if re&windows.POLLERR != 0 {
			ev |= Error
		}
		if re&windows.POLLHUP != 0 {
			ev |= HangUp
		}
		dst = append(dst, Ready{Fd: fd, Events: ev})
	}
	return dst, nil
}

func (p *poll) drainWake() {
	var buf [64]byte
	for {
		n, err := windows.Recv(p.wakeR, buf[:], 0)
		if n <= 0 || err != nil {
			return
		}
	}
}

func (p *poll) Wake() error {
	_, err := windows.Send(p.wakeW, []byte{0}, 0)
	return err
}

func (p *poll) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	_ = windows.Closesocket(p.wakeR)
	return windows.Closesocket(p.wakeW)
}

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

//go:build unix && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package backend

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// poll is the portable fallback backend for Unix-family platforms with
// neither epoll nor kqueue (e.g. Solaris, AIX), built on unix.Poll. No
// third-party portable readiness-multiplexer library exists anywhere in
// the retrieved example pack, and poll(2) is the lowest common denominator
// every Unix exposes, so golang.org/x/sys/unix is used directly rather than
// hand-rolling the syscall.
type poll struct {
	mu     sync.Mutex
	fds    map[int]Event
	wakeR  int
	wakeW  int
	closed bool
}

// NewPoll creates a Backend backed by poll(2).
func NewPoll() (Backend, error) {
	var pipeFds [2]int
	if err := unix.Pipe2(pipeFds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, os.NewSyscallError("pipe2", err)
	}
	return &poll{fds: map[int]Event{}, wakeR: pipeFds[0], wakeW: pipeFds[1]}, nil
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

func toPollEvents(ev Event) int16 {
	var m int16
	if ev&Readable != 0 {
		m |= unix.POLLIN
	}
	if ev&Writable != 0 {
		m |= unix.POLLOUT
	}
	return m
}

func (p *poll) Wait(dst []Ready, timeout time.Duration) ([]Ready, error) {
	p.mu.Lock()
	fds := make([]unix.PollFd, 0, len(p.fds)+1)
	fds = append(fds, unix.PollFd{Fd: int32(p.wakeR), Events: unix.POLLIN})
	order := make([]int, 0, len(p.fds))
	for fd, ev := range p.fds {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: toPollEvents(ev)})
		order = append(order, fd)
	}
	p.mu.Unlock()

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, os.NewSyscallError("poll", err)
	}
	if n == 0 {
		return dst, nil
	}

	if fds[0].Revents != 0 {
		p.drainWake()
	}
	for i, fd := range order {
		re := fds[i+1].Revents
		if re == 0 {
			continue
		}
		var ev Event
		if re&unix.POLLIN != 0 {
			ev |= Readable
		}
		if re&unix.POLLOUT != 0 {
			ev |= Writable
		}
		if re&unix.POLLERR != 0 {
			ev |= Error
		}
		if re&unix.POLLHUP != 0 {
			ev |= HangUp
		}
		dst = append(dst, Ready{Fd: fd, Events: ev})
	}
	return dst, nil
}

func (p *poll) drainWake() {
	var buf [64]byte
	for {
		n, err := unix.Read(p.wakeR, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (p *poll) Wake() error {
	_, err := unix.Write(p.wakeW, []byte{0})
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

func (p *poll) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	_ = unix.Close(p.wakeR)
	return unix.Close(p.wakeW)
}

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

//go:build linux

package backend

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

type epoll struct {
	fd     int
	wakeR  int
	wakeW  int
	mu     sync.Mutex
	closed bool
}

// NewEpoll creates a Backend backed by Linux epoll, with an internal
// self-pipe registered for Readable so Wake can interrupt Wait.
func NewEpoll() (Backend, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}

	var pipeFds [2]int
	if err = unix.Pipe2(pipeFds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("pipe2", err)
	}

	e := &epoll{fd: fd, wakeR: pipeFds[0], wakeW: pipeFds[1]}
	if err = e.Add(e.wakeR, Readable); err != nil {
		_ = unix.Close(e.wakeR)
		_ = unix.Close(e.wakeW)
		_ = unix.Close(fd)
		return nil, err
	}
	return e, nil
}

func toEpollEvents(ev Event) uint32 {
	var m uint32
	if ev&Readable != 0 {
		m |= unix.EPOLLIN
	}
	if ev&Writable != 0 {
		m |= unix.EPOLLOUT
	}
	return m
}

func fromEpollEvents(m uint32) Event {
	var ev Event
	if m&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
		ev |= Readable
	}
	if m&unix.EPOLLOUT != 0 {
		ev |= Writable
	}
	if m&unix.EPOLLERR != 0 {
		ev |= Error
	}
	if m&unix.EPOLLHUP != 0 {
		ev |= HangUp
	}
	return ev
}

func (e *epoll) Add(fd int, events Event) error {
	return unix.EpollCtl(e.fd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: toEpollEvents(events) | unix.EPOLLERR | unix.EPOLLHUP,
		Fd:     int32(fd),
	})
}

func (e *epoll) Modify(fd int, events Event) error {
	return unix.EpollCtl(e.fd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: toEpollEvents(events) | unix.EPOLLERR | unix.EPOLLHUP,
		Fd:     int32(fd),
	})
}

func (e *epoll) Remove(fd int) error {
	err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT || err == unix.EBADF {
		return nil
	}
	return err
}

func (e *epoll) Wait(dst []Ready, timeout time.Duration) ([]Ready, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	var raw [128]unix.EpollEvent
	n, err := unix.EpollWait(e.fd, raw[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, os.NewSyscallError("epoll_wait", err)
	}

	for i := 0; i < n; i++ {
		fd := int(raw[i].Fd)
		if fd == e.wakeR {
			e.drainWake()
			continue
		}
		dst = append(dst, Ready{Fd: fd, Events: fromEpollEvents(raw[i].Events)})
	}
	return dst, nil
}

func (e *epoll) drainWake() {
	var buf [64]byte
	for {
		n, err := unix.Read(e.wakeR, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (e *epoll) Wake() error {
	_, err := unix.Write(e.wakeW, []byte{0})
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

func (e *epoll) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	_ = unix.Close(e.wakeR)
	_ = unix.Close(e.wakeW)
	return unix.Close(e.fd)
}

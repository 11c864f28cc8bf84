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

//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package backend

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

type kqueueBackend struct {
	fd     int
	wakeR  int
	wakeW  int
	mu     sync.Mutex
	closed bool

	// registered tracks which events are currently armed per fd, since
	// kqueue requires separate EVFILT_READ/EVFILT_WRITE change entries
	// rather than epoll's single combined mask.
	registered map[int]Event
}

// NewKqueue creates a Backend backed by BSD/Darwin kqueue, with an internal
// self-pipe registered for EVFILT_READ so Wake can interrupt Wait.
func NewKqueue() (Backend, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, os.NewSyscallError("kqueue", err)
	}
	unix.CloseOnExec(fd)

	var pipeFds [2]int
	if err = unix.Pipe2(pipeFds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("pipe2", err)
	}

	k := &kqueueBackend{fd: fd, wakeR: pipeFds[0], wakeW: pipeFds[1], registered: map[int]Event{}}
	if err = k.Add(k.wakeR, Readable); err != nil {
		_ = unix.Close(k.wakeR)
		_ = unix.Close(k.wakeW)
		_ = unix.Close(fd)
		return nil, err
	}
	return k, nil
}

func (k *kqueueBackend) apply(fd int, from, to Event) error {
	var changes []unix.Kevent_t

	if from&Readable != 0 && to&Readable == 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_READ, unix.EV_DELETE))
	} else if from&Readable == 0 && to&Readable != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_READ, unix.EV_ADD|unix.EV_CLEAR))
	}

	if from&Writable != 0 && to&Writable == 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_WRITE, unix.EV_DELETE))
	} else if from&Writable == 0 && to&Writable != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_WRITE, unix.EV_ADD|unix.EV_CLEAR))
	}

	if len(changes) == 0 {
		return nil
	}
	_, err := unix.Kevent(k.fd, changes, nil, nil)
	return err
}

func kevent(fd int, filter int16, flags uint16) unix.Kevent_t {
	return unix.Kevent_t{Ident: uint64(fd), Filter: filter, Flags: flags}
}

func (k *kqueueBackend) Add(fd int, events Event) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.apply(fd, 0, events); err != nil {
		return err
	}
	k.registered[fd] = events
	return nil
}

func (k *kqueueBackend) Modify(fd int, events Event) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	cur := k.registered[fd]
	if err := k.apply(fd, cur, events); err != nil {
		return err
	}
	k.registered[fd] = events
	return nil
}

func (k *kqueueBackend) Remove(fd int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	cur, ok := k.registered[fd]
	if !ok {
		return nil
	}
	err := k.apply(fd, cur, 0)
	delete(k.registered, fd)
	if err == unix.ENOENT || err == unix.EBADF {
		return nil
	}
	return err
}

func (k *kqueueBackend) Wait(dst []Ready, timeout time.Duration) ([]Ready, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	var raw [128]unix.Kevent_t
	n, err := unix.Kevent(k.fd, nil, raw[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, os.NewSyscallError("kevent", err)
	}

	for i := 0; i < n; i++ {
		fd := int(raw[i].Ident)
		if fd == k.wakeR {
			k.drainWake()
			continue
		}

		var ev Event
		switch raw[i].Filter {
		case unix.EVFILT_READ:
			ev = Readable
		case unix.EVFILT_WRITE:
			ev = Writable
		}
		if raw[i].Flags&unix.EV_EOF != 0 {
			ev |= HangUp
		}
		if raw[i].Flags&unix.EV_ERROR != 0 {
			ev |= Error
		}
		dst = append(dst, Ready{Fd: fd, Events: ev})
	}
	return dst, nil
}

func (k *kqueueBackend) drainWake() {
	var buf [64]byte
	for {
		n, err := unix.Read(k.wakeR, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (k *kqueueBackend) Wake() error {
	_, err := unix.Write(k.wakeW, []byte{0})
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

func (k *kqueueBackend) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true

	_ = unix.Close(k.wakeR)
	_ = unix.Close(k.wakeW)
	return unix.Close(k.fd)
}

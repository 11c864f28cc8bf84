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

// Package udp adapts a listening (unconnected) UDP socket into a
// reactor.Handle. Unlike socket/server/tcp, there is no accept step: one
// Listener handles datagrams from every peer, tagging each with its
// source address instead of spawning a per-peer connection.
package udp

import (
	"errors"
	"net"
	"sync"
	"syscall"

	libmph "github.com/nabbar/golib/mpool"
	libqu "github.com/nabbar/golib/queue"
	librct "github.com/nabbar/golib/reactor"
	libbck "github.com/nabbar/golib/reactor/backend"
	libskc "github.com/nabbar/golib/socket/config"
	libraw "github.com/nabbar/golib/socket/raw"
)

// Handler receives the events a Listener produces. All methods are
// invoked from the loop's own goroutine.
type Handler interface {
	// OnData is called once per datagram received, with the sender's
	// address so the handler can reply via Listener.WriteTo. data is only
	// valid for the duration of the call.
	OnData(s *Listener, peer net.Addr, data []byte)
	OnListenError(err error)
}

type writeItem struct {
	blk  *libmph.Block
	off  int
	peer net.Addr
}

// Listener is a listening UDP socket driven by a reactor.Loop.
type Listener struct {
	librct.HandleState

	loop *librct.Loop
	pc   net.PacketConn
	fd   int
	pool *libmph.Pool
	h    Handler
	cfg  libskc.Server

	writeMu sync.Mutex
	pending libqu.Queue
	writing bool
}

// Listen opens cfg's listening UDP socket and wraps it for registration
// with a Loop. The returned Listener is not yet registered; call Register.
func Listen(cfg libskc.Server, pool *libmph.Pool, h Handler) (*Listener, error) {
	_, pc, err := libraw.Listen(cfg)
	if err != nil {
		return nil, err
	}
	if pc == nil {
		return nil, errors.New("socket/server/udp: configuration did not yield a packet socket")
	}

	fd, err := libraw.FD(pc.(libraw.Syscaller))
	if err != nil {
		_ = pc.Close()
		return nil, err
	}

	return &Listener{pc: pc, fd: fd, pool: pool, h: h, cfg: cfg, pending: libqu.NewNormal(16, nil)}, nil
}

// Register arms the listener for readability on l.
func (s *Listener) Register(l *librct.Loop) error {
	s.loop = l
	return l.Register(s, libbck.Readable)
}

// Addr returns the listener's bound address, useful when cfg.Address used
// port 0 and the OS picked one.
func (s *Listener) Addr() net.Addr {
	return s.pc.LocalAddr()
}

// FD implements reactor.Handle.
func (s *Listener) FD() int { return s.fd }

// Kind implements reactor.Handle.
func (s *Listener) Kind() librct.Kind { return librct.KindUDP }

// WriteTo queues a datagram for peer, draining as much as possible
// immediately. Safe to call from any goroutine.
func (s *Listener) WriteTo(peer net.Addr, data []byte) {
	if len(data) == 0 {
		return
	}

	blk := s.pool.Alloc(len(data))
	copy(blk.Data, data)

	s.writeMu.Lock()
	s.pending.Enqueue(&writeItem{blk: blk, peer: peer})
	s.writeMu.Unlock()

	s.loop.QueueWorkImmediate(func() { s.flush() })
}

// OnReadable implements reactor.Handle: it drains every datagram currently
// queued on the socket, dispatching each to the Handler with its sender.
func (s *Listener) OnReadable(l *librct.Loop) {
	for {
		blk := s.pool.Alloc(64 * 1024)
		n, peer, err := s.pc.ReadFrom(blk.Data)
		if n > 0 && s.h != nil {
			s.h.OnData(s, peer, blk.Data[:n])
		}
		s.pool.Free(blk)

		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
				return
			}
			if s.h != nil {
				s.h.OnListenError(err)
			}
			return
		}
	}
}

// OnWritable implements reactor.Handle.
func (s *Listener) OnWritable(l *librct.Loop) {
	s.flush()
}

func (s *Listener) flush() {
	if !s.Active() {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for {
		v, ok := s.pending.Peek()
		if !ok {
			if s.writing {
				s.writing = false
				_ = s.loop.Modify(s, libbck.Readable)
			}
			return
		}

		item := v.(*writeItem)
		n, err := s.pc.WriteTo(item.blk.Data[item.off:], item.peer)
		if n > 0 {
			item.off += n
		}
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
				if !s.writing {
					s.writing = true
					_ = s.loop.Modify(s, libbck.Readable|libbck.Writable)
				}
				return
			}
			if s.h != nil {
				s.h.OnListenError(err)
			}
			_, _ = s.pending.Dequeue()
			s.pool.Free(item.blk)
			continue
		}

		if item.off >= len(item.blk.Data) {
			_, _ = s.pending.Dequeue()
			s.pool.Free(item.blk)
		}
	}
}

// OnClose implements reactor.Handle.
func (s *Listener) OnClose(l *librct.Loop) {
	_ = s.pc.Close()

	s.writeMu.Lock()
	s.pending.ForEach(func(v interface{}) {
		if item, ok := v.(*writeItem); ok {
			s.pool.Free(item.blk)
		}
	})
	s.pending.Clear()
	s.writeMu.Unlock()
}

// Close requests the listener be torn down. Safe to call from any
// goroutine.
func (s *Listener) Close() {
	s.loop.Remove(s)
}

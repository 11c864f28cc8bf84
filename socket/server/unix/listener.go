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

// Package unix adapts a listening Unix domain stream socket into a
// reactor.Handle, mirroring socket/server/tcp.Listener: accepted
// connections are wrapped as socket/client/unix.Conn handles and
// registered with the same loop. The socket file's permission and group
// ownership are applied by socket/raw.Listen before this package ever
// sees the listener.
package unix

import (
	"errors"
	"net"
	"syscall"

	libmph "github.com/nabbar/golib/mpool"
	librct "github.com/nabbar/golib/reactor"
	libbck "github.com/nabbar/golib/reactor/backend"
	libcli "github.com/nabbar/golib/socket/client/unix"
	libskc "github.com/nabbar/golib/socket/config"
	libraw "github.com/nabbar/golib/socket/raw"
)

// AcceptHandler is notified of every connection the listener accepts, and
// must return the Handler that will drive it.
type AcceptHandler interface {
	OnAccept(c *libcli.Conn) libcli.Handler
	OnListenError(err error)
}

// Listener is a listening Unix domain socket driven by a reactor.Loop.
type Listener struct {
	librct.HandleState

	loop *librct.Loop
	ln   net.Listener
	fd   int
	pool *libmph.Pool
	h    AcceptHandler
	cfg  libskc.Server
}

// Listen opens cfg's listening socket and wraps it for registration with a
// Loop. The returned Listener is not yet registered; call Register.
func Listen(cfg libskc.Server, pool *libmph.Pool, h AcceptHandler) (*Listener, error) {
	ln, _, err := libraw.Listen(cfg)
	if err != nil {
		return nil, err
	}

	fd, err := libraw.FD(ln.(libraw.Syscaller))
	if err != nil {
		_ = ln.Close()
		return nil, err
	}

	return &Listener{ln: ln, fd: fd, pool: pool, h: h, cfg: cfg}, nil
}

// Register arms the listener for readability (incoming connections) on l.
func (s *Listener) Register(l *librct.Loop) error {
	s.loop = l
	return l.Register(s, libbck.Readable)
}

// Addr returns the listener's bound socket path.
func (s *Listener) Addr() net.Addr {
	return s.ln.Addr()
}

// FD implements reactor.Handle.
func (s *Listener) FD() int { return s.fd }

// Kind implements reactor.Handle.
func (s *Listener) Kind() librct.Kind { return librct.KindUnix }

// OnReadable implements reactor.Handle: it accepts every connection
// currently queued, registering each with the same loop.
func (s *Listener) OnReadable(l *librct.Loop) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
				return
			}
			if s.h != nil {
				s.h.OnListenError(err)
			}
			return
		}

		fd, err := libraw.FD(conn.(libraw.Syscaller))
		if err != nil {
			_ = conn.Close()
			continue
		}

		c := libcli.Accepted(conn, fd, s.pool)
		if s.h != nil {
			c.SetHandler(s.h.OnAccept(c))
		}
		if err = c.Register(l); err != nil {
			c.Close()
		}
	}
}

// OnWritable implements reactor.Handle; a listener never asks for
// writability.
func (s *Listener) OnWritable(l *librct.Loop) {}

// OnClose implements reactor.Handle.
func (s *Listener) OnClose(l *librct.Loop) {
	_ = s.ln.Close()
}

// Close requests the listener be torn down. Safe to call from any
// goroutine.
func (s *Listener) Close() {
	s.loop.Remove(s)
}

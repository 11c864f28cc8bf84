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

// Package udp adapts a "connected" UDP socket (net.Dial with one fixed
// peer) into a reactor.Handle, the same write-queue/read/close shape as
// socket/client/tcp but over datagrams: each OnReadable call surfaces
// exactly one datagram, never a partial or coalesced read.
package udp

import (
	"errors"
	"sync"
	"syscall"

	libmph "github.com/nabbar/golib/mpool"
	libqu "github.com/nabbar/golib/queue"
	librct "github.com/nabbar/golib/reactor"
	libbck "github.com/nabbar/golib/reactor/backend"
	libraw "github.com/nabbar/golib/socket/raw"
	libskc "github.com/nabbar/golib/socket/config"
)

// Handler receives the events a Conn produces while registered with a
// Loop. All methods are invoked from the loop's own goroutine.
type Handler interface {
	OnConnect(c *Conn)
	// OnData is called once per datagram read from the socket. data is
	// only valid for the duration of the call; copy it to retain it.
	OnData(c *Conn, data []byte)
	OnClose(c *Conn, err error)
}

type writeItem struct {
	blk *libmph.Block
	off int
}

// Conn is a connected UDP socket driven by a reactor.Loop.
type Conn struct {
	librct.HandleState

	loop *librct.Loop
	rw   interface {
		Read([]byte) (int, error)
		Write([]byte) (int, error)
	}
	fd   int
	pool *libmph.Pool
	h    Handler
	cfg  libskc.Client

	writeMu sync.Mutex
	pending libqu.Queue
	writing bool

	closeErr error
}

// Dial opens cfg's connected UDP socket and wraps it for registration with
// l. The returned Conn is not yet registered; call Register.
func Dial(cfg libskc.Client, pool *libmph.Pool, h Handler) (*Conn, error) {
	conn, err := libraw.Dial(cfg)
	if err != nil {
		return nil, err
	}

	fd, err := libraw.FD(conn.(libraw.Syscaller))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Conn{
		rw:      conn,
		fd:      fd,
		pool:    pool,
		h:       h,
		cfg:     cfg,
		pending: libqu.NewNormal(16, nil),
	}, nil
}

// Register arms c for readability on l and invokes the handler's
// OnConnect callback.
func (c *Conn) Register(l *librct.Loop) error {
	c.loop = l
	if err := l.Register(c, libbck.Readable); err != nil {
		return err
	}
	if c.h != nil {
		c.h.OnConnect(c)
	}
	return nil
}

// FD implements reactor.Handle.
func (c *Conn) FD() int { return c.fd }

// Kind implements reactor.Handle.
func (c *Conn) Kind() librct.Kind { return librct.KindUDP }

// Write queues a datagram, draining as much as possible immediately and
// arming for writability if the socket cannot absorb it right away. Safe
// to call from any goroutine.
func (c *Conn) Write(data []byte) {
	if len(data) == 0 {
		return
	}

	blk := c.pool.Alloc(len(data))
	copy(blk.Data, data)

	c.writeMu.Lock()
	c.pending.Enqueue(&writeItem{blk: blk})
	c.writeMu.Unlock()

	c.loop.QueueWorkImmediate(func() { c.flush() })
}

// OnReadable implements reactor.Handle: one read surfaces exactly one
// datagram.
func (c *Conn) OnReadable(l *librct.Loop) {
	blk := c.pool.Alloc(64 * 1024)
	defer c.pool.Free(blk)

	n, err := c.rw.Read(blk.Data)
	if n > 0 && c.h != nil {
		c.h.OnData(c, blk.Data[:n])
	}
	if err != nil {
		c.fail(err)
	}
}

// OnWritable implements reactor.Handle.
func (c *Conn) OnWritable(l *librct.Loop) {
	c.flush()
}

func (c *Conn) flush() {
	if !c.Active() {
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	for {
		v, ok := c.pending.Peek()
		if !ok {
			if c.writing {
				c.writing = false
				_ = c.loop.Modify(c, libbck.Readable)
			}
			return
		}

		item := v.(*writeItem)
		n, err := c.rw.Write(item.blk.Data[item.off:])
		if n > 0 {
			item.off += n
		}
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
				if !c.writing {
					c.writing = true
					_ = c.loop.Modify(c, libbck.Readable|libbck.Writable)
				}
				return
			}
			c.fail(err)
			return
		}

		if item.off >= len(item.blk.Data) {
			_, _ = c.pending.Dequeue()
			c.pool.Free(item.blk)
		}
	}
}

func (c *Conn) fail(err error) {
	c.closeErr = err
	c.loop.Remove(c)
}

// OnClose implements reactor.Handle.
func (c *Conn) OnClose(l *librct.Loop) {
	if closer, ok := c.rw.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	c.writeMu.Lock()
	c.pending.ForEach(func(v interface{}) {
		if item, ok := v.(*writeItem); ok {
			c.pool.Free(item.blk)
		}
	})
	c.pending.Clear()
	c.writeMu.Unlock()

	if c.h != nil {
		c.h.OnClose(c, c.closeErr)
	}
}

// Close requests the connection be torn down. Safe to call from any
// goroutine.
func (c *Conn) Close() {
	c.loop.Remove(c)
}

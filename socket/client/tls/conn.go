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

// Package tls wraps a socket/client/tcp.Conn with a tlsengine.Session,
// bridging the engine's blocking Handshake/Read/Write pair to the
// reactor's non-blocking OnReadable/OnWritable callbacks via one
// dedicated per-connection goroutine.
package tls

import (
	"context"
	"errors"
	"sync"

	liblog "github.com/nabbar/golib/logger"
	libmph "github.com/nabbar/golib/mpool"
	librct "github.com/nabbar/golib/reactor"
	libcli "github.com/nabbar/golib/socket/client/tcp"
	libskc "github.com/nabbar/golib/socket/config"
	libtge "github.com/nabbar/golib/tlsengine"
)

// errTLSNotEnabled is returned by Dial when cfg has no TLS configuration.
var errTLSNotEnabled = errors.New("socket/client/tls: TLS not enabled in configuration")

// Handler receives decrypted application events. Unlike tcp.Handler, these
// calls happen on the Conn's dedicated pump goroutine, never on the
// reactor's own goroutine, since tlsengine.Session.Read/Write block.
type Handler interface {
	OnConnect(c *Conn)
	OnData(c *Conn, data []byte)
	OnClose(c *Conn, err error)
}

// Conn layers a TLS session over an already-registered tcp.Conn.
type Conn struct {
	raw     *libcli.Conn
	session *libtge.Session
	h       Handler
	log     liblog.FuncLog

	closeOnce sync.Once
	closeErr  error
}

// NewClient wraps an already-dialed, not-yet-registered raw tcp.Conn in a
// client TLS session: it installs itself as raw's tcp.Handler, so callers
// must call raw.Register(loop) themselves afterwards to start the pump.
func NewClient(raw *libcli.Conn, session *libtge.Session, h Handler) *Conn {
	c := &Conn{raw: raw, session: session, h: h}
	raw.SetHandler(c)
	return c
}

// Dial opens cfg's outbound TCP connection, requiring cfg.GetTLS() to
// report TLS enabled, and wraps it in a client tlsengine.Session built
// from the resolved certificates.TLSConfig and ServerName. The returned
// Conn is registered with l and its handshake already under way by the
// time Dial returns; h.OnConnect fires once the handshake completes.
func Dial(l *librct.Loop, cfg libskc.Client, pool *libmph.Pool, h Handler) (*Conn, error) {
	enabled, tlsCfg, serverName := cfg.GetTLS()
	if !enabled {
		return nil, errTLSNotEnabled
	}

	raw, err := libcli.Dial(cfg, pool, nil)
	if err != nil {
		return nil, err
	}

	session := libtge.NewClientFromCertificates(tlsCfg, serverName)
	c := NewClient(raw, session, h)

	if err = raw.Register(l); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// SetLogger installs the FuncLog consulted for pump/handshake failures.
func (c *Conn) SetLogger(f liblog.FuncLog) {
	c.log = f
}

// SetHandler assigns the Handler notified of decrypted events. Safe to
// call any time before the raw connection is registered; a server listener
// uses this to supply the application Handler only once it has had a
// chance to inspect the *Conn its AcceptHandler was given.
func (c *Conn) SetHandler(h Handler) {
	c.h = h
}

// Write encrypts and queues data for the peer. Safe to call from any
// goroutine; the actual encryption happens synchronously on the caller's
// goroutine via tlsengine, matching crypto/tls.Conn.Write's own contract.
func (c *Conn) Write(data []byte) (int, error) {
	return c.session.Write(data)
}

// Close tears down the TLS session and the underlying connection.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		_ = c.session.Close()
		c.raw.Close()
	})
}

// OnConnect implements tcp.Handler: it starts the outbound ciphertext pump
// and the handshake/read goroutine once the raw transport is live. The
// pump runs independently of the handshake/read loop below, since
// Handshake and Read both block their own goroutine and must not be the
// thing draining the engine's outbound queue.
func (c *Conn) OnConnect(raw *libcli.Conn) {
	go c.pumpOutbound()
	go c.run()
}

// OnData implements tcp.Handler: raw ciphertext read off the wire is fed
// into the TLS engine. pumpOutbound (already running) picks up whatever
// response the engine produces.
func (c *Conn) OnData(raw *libcli.Conn, data []byte) {
	_ = c.session.Feed(data)
}

// OnClose implements tcp.Handler.
func (c *Conn) OnClose(raw *libcli.Conn, err error) {
	c.closeErr = err
	_ = c.session.Close()
	if c.h != nil {
		c.h.OnClose(c, err)
	}
}

// pumpOutbound forwards every ciphertext chunk the engine produces to the
// raw transport for as long as the session stays open. It must run for
// the whole connection lifetime, independent of Handshake/Read, since
// those block the goroutine that calls them.
func (c *Conn) pumpOutbound() {
	for chunk := range c.session.Outbound() {
		c.raw.Write(chunk)
	}
}

// run drives the handshake then loops decrypting application data,
// delivering it to the Handler. It owns the only goroutine allowed to call
// Session.Read/Write, since both block.
func (c *Conn) run() {
	ctx := context.Background()

	if err := c.session.Handshake(ctx); err != nil {
		liblog.Resolve(c.log).Error("tls handshake failed", map[string]interface{}{"error": err.Error()})
		c.Close()
		return
	}

	if c.h != nil {
		c.h.OnConnect(c)
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := c.session.Read(buf)
		if n > 0 && c.h != nil {
			c.h.OnData(c, buf[:n])
		}
		if err != nil {
			if !errors.Is(err, libtge.ErrClosed) && c.h != nil {
				c.closeErr = err
			}
			c.Close()
			return
		}
	}
}

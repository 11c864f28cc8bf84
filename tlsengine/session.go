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

// Package tlsengine is a backend-agnostic TLS session facade: it drives a
// crypto/tls.Conn the same way OpenSSL's rbio/wbio memory BIOs would, over
// an in-memory net.Pipe standing in for the two BIOs, so a caller that only
// has raw ciphertext bytes (from a reactor.Handle's OnReadable, destined
// for its OnWritable) can still use crypto/tls without owning a real
// net.Conn to the peer.
package tlsengine

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync/atomic"

	libtls "github.com/nabbar/golib/certificates"
	liblog "github.com/nabbar/golib/logger"
)

// State is the session's handshake lifecycle, spec.md's SSL engine state
// machine.
type State int32

const (
	StateInit State = iota
	StateHandshaking
	StateConnected
	StateShuttingDown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateHandshaking:
		return "handshaking"
	case StateConnected:
		return "connected"
	case StateShuttingDown:
		return "shutting_down"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrClosed is returned by Feed/Drain/Read/Write once the session has been
// closed.
var ErrClosed = errors.New("tlsengine: session closed")

// Session wraps one crypto/tls.Conn over an in-memory net.Pipe. The pipe's
// "network" side (appSide) is pumped by two background goroutines: one
// drains Feed's inbound ciphertext queue into appSide.Write, the other
// copies appSide.Read output into Drain's outbound queue. Neither pump
// blocks Feed or Drain, so both are safe to call from a reactor's own
// goroutine.
type Session struct {
	state State32

	tls     *tls.Conn
	appSide net.Conn

	inbound  chan []byte
	outbound chan []byte

	handshakeErr  chan error
	handshakeOnce int32

	log liblog.FuncLog
}

// State32 is an atomically-accessed State.
type State32 struct {
	v int32
}

func (s *State32) Load() State     { return State(atomic.LoadInt32(&s.v)) }
func (s *State32) Store(st State)  { atomic.StoreInt32(&s.v, int32(st)) }

const inboundQueueDepth = 64

// NewClient creates a Session that will perform a TLS client handshake
// using cfg once Handshake is called.
func NewClient(cfg *tls.Config) *Session {
	return newSession(cfg, true)
}

// NewServer creates a Session that will perform a TLS server handshake
// using cfg once Handshake is called.
func NewServer(cfg *tls.Config) *Session {
	return newSession(cfg, false)
}

// NewClientFromCertificates builds a client Session from the teacher's
// certificates.TLSConfig, the way SPEC_FULL.md's SSL engine module
// requires instead of hand-rolled tls.Config construction. serverName
// drives SNI and certificate selection.
func NewClientFromCertificates(cfg libtls.TLSConfig, serverName string) *Session {
	return NewClient(cfg.TLS(serverName))
}

// NewServerFromCertificates builds a server Session from the teacher's
// certificates.TLSConfig.
func NewServerFromCertificates(cfg libtls.TLSConfig, serverName string) *Session {
	return NewServer(cfg.TLS(serverName))
}

func newSession(cfg *tls.Config, client bool) *Session {
	appSide, tlsSide := net.Pipe()

	s := &Session{
		appSide:      appSide,
		inbound:      make(chan []byte, inboundQueueDepth),
		outbound:     make(chan []byte, inboundQueueDepth),
		handshakeErr: make(chan error, 1),
	}
	s.state.Store(StateInit)

	if client {
		s.tls = tls.Client(tlsSide, cfg)
	} else {
		s.tls = tls.Server(tlsSide, cfg)
	}

	go s.pumpInbound()
	go s.pumpOutbound()

	return s
}

// SetLogger installs the FuncLog consulted for pump and handshake errors.
func (s *Session) SetLogger(f liblog.FuncLog) {
	s.log = f
}

// State reports the session's current lifecycle state.
func (s *Session) State() State {
	return s.state.Load()
}

func (s *Session) pumpInbound() {
	for chunk := range s.inbound {
		if _, err := s.appSide.Write(chunk); err != nil {
			liblog.Resolve(s.log).Debug("tlsengine inbound pump stopped", map[string]interface{}{"error": err.Error()})
			return
		}
	}
}

func (s *Session) pumpOutbound() {
	buf := make([]byte, 16*1024)
	for {
		n, err := s.appSide.Read(buf)
		if n > 0 {
			cp := make([]byte, n)
			copy(cp, buf[:n])
			s.outbound <- cp
		}
		if err != nil {
			close(s.outbound)
			return
		}
	}
}

// Feed delivers ciphertext received off the real transport to the TLS
// engine. Safe to call from a reactor's own goroutine; never blocks past
// the inbound queue's depth.
func (s *Session) Feed(ciphertext []byte) error {
	if s.State() == StateClosed {
		return ErrClosed
	}
	if len(ciphertext) == 0 {
		return nil
	}

	cp := make([]byte, len(ciphertext))
	copy(cp, ciphertext)

	select {
	case s.inbound <- cp:
		return nil
	default:
		// Queue saturated: apply backpressure by blocking the caller
		// briefly rather than dropping ciphertext, which would corrupt
		// the TLS record stream.
		s.inbound <- cp
		return nil
	}
}

// Drain returns the next chunk of ciphertext the engine produced (from a
// handshake flight or an encrypted application write) for the caller to
// send over the real transport, or ok=false if nothing is pending.
func (s *Session) Drain() (chunk []byte, ok bool) {
	select {
	case c, open := <-s.outbound:
		return c, open
	default:
		return nil, false
	}
}

// Outbound exposes the raw channel Drain reads from, for callers that
// prefer to block on it (e.g. a dedicated per-connection pump goroutine)
// instead of polling Drain.
func (s *Session) Outbound() <-chan []byte {
	return s.outbound
}

// Handshake runs (or waits for) the TLS handshake, returning once it has
// completed or failed. Safe to call more than once; only the first call
// drives the handshake, later calls wait on the same result.
func (s *Session) Handshake(ctx context.Context) error {
	if atomic.CompareAndSwapInt32(&s.handshakeOnce, 0, 1) {
		s.state.Store(StateHandshaking)
		go func() {
			err := s.tls.HandshakeContext(ctx)
			if err == nil {
				s.state.Store(StateConnected)
			}
			s.handshakeErr <- err
		}()
	}

	select {
	case err := <-s.handshakeErr:
		s.handshakeErr <- err // allow subsequent callers to observe it too
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read returns decrypted application data. Blocks like crypto/tls.Conn.Read
// until data is available, the peer closes, or an error occurs; callers
// drive this from their own goroutine, not the reactor's.
func (s *Session) Read(dst []byte) (int, error) {
	return s.tls.Read(dst)
}

// Write encrypts and queues data for Drain to collect. Blocks like
// crypto/tls.Conn.Write.
func (s *Session) Write(data []byte) (int, error) {
	return s.tls.Write(data)
}

// Close shuts down the TLS session and releases the internal pipe.
func (s *Session) Close() error {
	if s.state.Load() == StateClosed {
		return nil
	}
	s.state.Store(StateShuttingDown)
	err := s.tls.Close()
	_ = s.appSide.Close()
	close(s.inbound)
	s.state.Store(StateClosed)
	return err
}

// ConnectionState exposes the negotiated TLS parameters once connected.
func (s *Session) ConnectionState() tls.ConnectionState {
	return s.tls.ConnectionState()
}

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

package wsocket

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"sync"
)

// Transport is the minimal sink a Conn drives: the non-blocking write/
// close surface every reactor-integrated connection (socket/client/tcp,
// socket/client/tls) already exposes.
type Transport interface {
	Write(data []byte)
	Close()
}

// Handler receives the events a Conn produces. Ping/pong and close frames
// are handled internally (RFC 6455 mandates the pong auto-reply); only
// application data frames and the final close reach the Handler.
type Handler interface {
	OnOpen(c *Conn)
	// OnMessage is called once per complete message (fragmented messages
	// are reassembled through their continuation chain first). payload is
	// only valid for the duration of the call.
	OnMessage(c *Conn, opcode Opcode, payload []byte)
	OnClose(c *Conn, code CloseCode, reason string, err error)
}

var (
	ErrConnClosed    = errors.New("wsocket: connection closed")
	ErrUnexpectedOp  = errors.New("wsocket: unexpected continuation without a started message")
	ErrFragmentStart = errors.New("wsocket: data frame received while a fragmented message is pending")
)

// Conn drives one RFC 6455 connection over a non-blocking Transport. The
// handshake and frame codec run in a dedicated goroutine against a
// net.Pipe, the same bridge pattern tlsengine.Session uses to give a
// blocking API to a reactor-fed byte stream: Feed hands the goroutine
// inbound wire bytes, and a pump drains whatever that goroutine writes
// back out to the Transport.
type Conn struct {
	transport  Transport
	wireSide   net.Conn
	engineSide net.Conn
	inbound    chan []byte

	h        Handler
	isClient bool
	host     string
	path     string

	maxPayload int64

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

const inboundQueueDepth = 64

func newConn(transport Transport, h Handler, isClient bool, host, path string, maxPayload int64) *Conn {
	wireSide, engineSide := net.Pipe()
	c := &Conn{
		transport:  transport,
		wireSide:   wireSide,
		engineSide: engineSide,
		inbound:    make(chan []byte, inboundQueueDepth),
		h:          h,
		isClient:   isClient,
		host:       host,
		path:       path,
		maxPayload: maxPayload,
		closed:     make(chan struct{}),
	}
	go c.pumpInbound()
	go c.pumpOutbound()
	go c.run()
	return c
}

// NewClient starts the client side of a WebSocket connection: it performs
// the upgrade handshake against host/path and then drives frames, all
// over transport. h.OnOpen fires once the handshake succeeds.
func NewClient(transport Transport, host, path string, h Handler) *Conn {
	return newConn(transport, h, true, host, path, 0)
}

// NewServer starts the server side of a WebSocket connection: it waits
// for and answers the client's upgrade request, then drives frames. The
// requested path is available via Conn.Path once h.OnOpen fires.
func NewServer(transport Transport, h Handler) *Conn {
	return newConn(transport, h, false, "", "", 0)
}

// Path returns the request path the handshake negotiated (client: the
// path passed to NewClient; server: the path the client requested).
func (c *Conn) Path() string { return c.path }

// Feed hands the connection raw bytes read off the wire. Called from the
// underlying transport's OnData callback; never blocks.
func (c *Conn) Feed(data []byte) {
	if len(data) == 0 {
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	select {
	case <-c.closed:
	case c.inbound <- cp:
	}
}

func (c *Conn) pumpInbound() {
	for chunk := range c.inbound {
		if _, err := c.wireSide.Write(chunk); err != nil {
			return
		}
	}
}

func (c *Conn) pumpOutbound() {
	buf := make([]byte, 32*1024)
	for {
		n, err := c.wireSide.Read(buf)
		if n > 0 {
			cp := make([]byte, n)
			copy(cp, buf[:n])
			c.transport.Write(cp)
		}
		if err != nil {
			return
		}
	}
}

// WriteMessage sends one unfragmented data frame. Safe to call from any
// goroutine; concurrent calls are serialized.
func (c *Conn) WriteMessage(opcode Opcode, payload []byte) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteFrame(c.engineSide, true, opcode, payload, c.isClient)
}

// Close sends a close frame and tears down the connection.
func (c *Conn) Close() error {
	return c.closeWith(CloseNormal, "")
}

func (c *Conn) closeWith(code CloseCode, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		err = WriteFrame(c.engineSide, true, OpClose, EncodeClosePayload(code, reason), c.isClient)
		c.writeMu.Unlock()
		close(c.closed)
		_ = c.engineSide.Close()
		_ = c.wireSide.Close()
		c.transport.Close()
	})
	return err
}

func (c *Conn) fail(err error) {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.engineSide.Close()
		_ = c.wireSide.Close()
		c.transport.Close()
	})
	if c.h != nil {
		c.h.OnClose(c, CloseProtocolError, "", err)
	}
}

func (c *Conn) run() {
	var br *bufio.Reader
	var err error

	if c.isClient {
		br, err = ClientHandshake(c.engineSide, c.host, c.path, nil)
	} else {
		c.path, br, err = ServerHandshake(c.engineSide)
	}
	if err != nil {
		c.fail(err)
		return
	}

	if c.h != nil {
		c.h.OnOpen(c)
	}

	var fragOpcode Opcode
	var fragging bool
	var frag bytes.Buffer

	for {
		frame, err := ReadFrame(br, c.maxPayload)
		if err != nil {
			c.fail(err)
			return
		}

		if c.isClient && frame.Masked {
			c.fail(ErrMaskedFromServer)
			return
		}
		if !c.isClient && !frame.Masked {
			c.fail(ErrUnmaskedFromPeer)
			return
		}

		switch frame.Opcode {
		case OpPing:
			c.writeMu.Lock()
			err = WriteFrame(c.engineSide, true, OpPong, frame.Payload, c.isClient)
			c.writeMu.Unlock()
			if err != nil {
				c.fail(err)
				return
			}
		case OpPong:
			// liveness only; nothing to do without a configured deadline.
		case OpClose:
			code, reason := DecodeClosePayload(frame.Payload)
			_ = c.closeWith(code, "")
			if c.h != nil {
				c.h.OnClose(c, code, reason, nil)
			}
			return
		case OpContinuation:
			if !fragging {
				c.fail(ErrUnexpectedOp)
				return
			}
			frag.Write(frame.Payload)
			if frame.Fin {
				if c.h != nil {
					c.h.OnMessage(c, fragOpcode, frag.Bytes())
				}
				frag.Reset()
				fragging = false
			}
		case OpText, OpBinary:
			if fragging {
				c.fail(ErrFragmentStart)
				return
			}
			if frame.Fin {
				if c.h != nil {
					c.h.OnMessage(c, frame.Opcode, frame.Payload)
				}
			} else {
				fragging = true
				fragOpcode = frame.Opcode
				frag.Reset()
				frag.Write(frame.Payload)
			}
		}
	}
}

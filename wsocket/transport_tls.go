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
	libtcl "github.com/nabbar/golib/socket/client/tls"
)

// tlsBridge adapts a socket/client/tls.Conn into a WebSocket Transport:
// WriteMessage's ciphertext-free frame bytes are handed to the TLS session
// for encryption, and decrypted application data is fed back to the Conn.
type tlsBridge struct {
	raw *libtcl.Conn
	ws  *Conn
}

// ServeTLS wraps a server-accepted socket/client/tls.Conn (its handshake
// already complete by the time the caller's AcceptHandler runs) as a
// secure WebSocket server connection.
func ServeTLS(raw *libtcl.Conn, h Handler) *Conn {
	b := &tlsBridge{raw: raw}
	b.ws = NewServer(b, h)
	raw.SetHandler(b)
	return b.ws
}

// NewClientTLS wraps a socket/client/tls.Conn constructed (but not yet
// registered) via socket/client/tls.NewClient/Dial as a secure (wss://)
// WebSocket client connection over host/path.
func NewClientTLS(raw *libtcl.Conn, host, path string, h Handler) *Conn {
	b := &tlsBridge{raw: raw}
	b.ws = NewClient(b, host, path, h)
	raw.SetHandler(b)
	return b.ws
}

func (b *tlsBridge) Write(data []byte) { _, _ = b.raw.Write(data) }
func (b *tlsBridge) Close()            { b.raw.Close() }

func (b *tlsBridge) OnConnect(c *libtcl.Conn)           {}
func (b *tlsBridge) OnData(c *libtcl.Conn, data []byte) { b.ws.Feed(data) }
func (b *tlsBridge) OnClose(c *libtcl.Conn, err error)  { b.ws.fail(err) }

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
	librct "github.com/nabbar/golib/reactor"
	libcli "github.com/nabbar/golib/socket/client/tcp"
)

// tcpBridge adapts a plain TCP socket/client/tcp.Conn into a WebSocket
// Transport and feeds its inbound bytes to the Conn it fronts.
type tcpBridge struct {
	raw *libcli.Conn
	ws  *Conn
}

// DialTCP registers an already-dialed socket/client/tcp.Conn with l,
// performs the RFC 6455 upgrade over host/path once connected, and drives
// frames through h.
func DialTCP(l *librct.Loop, raw *libcli.Conn, host, path string, h Handler) (*Conn, error) {
	b := &tcpBridge{raw: raw}
	b.ws = NewClient(b, host, path, h)
	raw.SetHandler(b)
	if err := raw.Register(l); err != nil {
		return nil, err
	}
	return b.ws, nil
}

// ServeTCP wraps a server-accepted socket/client/tcp.Conn as a WebSocket
// server connection: it waits for the client's upgrade request and drives
// frames through h.
func ServeTCP(raw *libcli.Conn, h Handler) *Conn {
	b := &tcpBridge{raw: raw}
	b.ws = NewServer(b, h)
	raw.SetHandler(b)
	return b.ws
}

func (b *tcpBridge) Write(data []byte) { b.raw.Write(data) }
func (b *tcpBridge) Close()            { b.raw.Close() }

func (b *tcpBridge) OnConnect(c *libcli.Conn)          {}
func (b *tcpBridge) OnData(c *libcli.Conn, data []byte) { b.ws.Feed(data) }
func (b *tcpBridge) OnClose(c *libcli.Conn, err error)  { b.ws.fail(err) }

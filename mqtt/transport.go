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

package mqtt

import (
	"net"
	"strings"

	libmph "github.com/nabbar/golib/mpool"
	libptc "github.com/nabbar/golib/network/protocol"
	librct "github.com/nabbar/golib/reactor"
	libcli "github.com/nabbar/golib/socket/client/tcp"
	libtcl "github.com/nabbar/golib/socket/client/tls"
	libskc "github.com/nabbar/golib/socket/config"
	libtge "github.com/nabbar/golib/tlsengine"
	"github.com/nabbar/golib/wsocket"
)

// sender is the write/close facade the Client drives once a transport of
// any of the four kinds (TCP, TLS, WS over TCP, WS over TLS) is up. It
// hides which concrete conn type backs the session from the rest of the
// client.
type sender interface {
	send(data []byte) error
	close()
}

type tcpSender struct{ c *libcli.Conn }

func (s tcpSender) send(data []byte) error { s.c.Write(data); return nil }
func (s tcpSender) close()                 { s.c.Close() }

type tlsSender struct{ c *libtcl.Conn }

func (s tlsSender) send(data []byte) error { _, err := s.c.Write(data); return err }
func (s tlsSender) close()                 { s.c.Close() }

type wsSender struct{ c *wsocket.Conn }

func (s wsSender) send(data []byte) error { return s.c.WriteMessage(wsocket.OpBinary, data) }
func (s wsSender) close()                 { _ = s.c.Close() }

// tcpHandler adapts tcp.Handler to the Client's transport callbacks for a
// plain (non-WebSocket) TCP session.
type tcpHandler struct{ cl *Client }

func (h tcpHandler) OnConnect(c *libcli.Conn) { h.cl.onTransportUp(tcpSender{c}) }
func (h tcpHandler) OnData(c *libcli.Conn, data []byte) { h.cl.onTransportData(data) }
func (h tcpHandler) OnClose(c *libcli.Conn, err error)  { h.cl.onTransportDown(err) }

// tlsHandler adapts tls.Handler likewise for a TLS session.
type tlsHandler struct{ cl *Client }

func (h tlsHandler) OnConnect(c *libtcl.Conn) { h.cl.onTransportUp(tlsSender{c}) }
func (h tlsHandler) OnData(c *libtcl.Conn, data []byte) { h.cl.onTransportData(data) }
func (h tlsHandler) OnClose(c *libtcl.Conn, err error)  { h.cl.onTransportDown(err) }

// wsHandler adapts wsocket.Handler for both WS-over-TCP and WS-over-TLS;
// the underlying transport differs, but wsocket.Conn hides it.
type wsHandler struct{ cl *Client }

func (h wsHandler) OnOpen(c *wsocket.Conn) { h.cl.onTransportUp(wsSender{c}) }
func (h wsHandler) OnMessage(c *wsocket.Conn, opcode wsocket.Opcode, payload []byte) {
	if opcode == wsocket.OpBinary || opcode == wsocket.OpText {
		h.cl.onTransportData(payload)
	}
}
func (h wsHandler) OnClose(c *wsocket.Conn, code wsocket.CloseCode, reason string, err error) {
	h.cl.onTransportDown(err)
}

// dial opens the transport selected by o (spec.md §4.9 "Transport
// selection": neither TLS nor WSPath set dials plain TCP, TLS only dials
// TLS, WSPath only layers WebSocket over TCP, both layers WebSocket over
// TLS) and registers it with l. The returned sender is not valid until the
// Client's onTransportUp callback fires.
func dial(l *librct.Loop, o Options, pool *libmph.Pool, cl *Client) error {
	cfg := libskc.Client{
		Network: libptc.NetworkTCP,
		Address: o.Address,
		Log:     o.Log,
	}

	host, _, err := net.SplitHostPort(o.Address)
	if err != nil {
		host = o.Address
	}
	path := o.WSPath
	if path == "" {
		path = "/"
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	switch {
	case !o.usesTLS() && !o.usesWebSocket():
		raw, err := libcli.Dial(cfg, pool, tcpHandler{cl: cl})
		if err != nil {
			return err
		}
		return raw.Register(l)

	case o.usesTLS() && !o.usesWebSocket():
		raw, err := libcli.Dial(cfg, pool, nil)
		if err != nil {
			return err
		}
		session := libtge.NewClient(o.TLS)
		_ = libtcl.NewClient(raw, session, tlsHandler{cl: cl})
		return raw.Register(l)

	case !o.usesTLS() && o.usesWebSocket():
		raw, err := libcli.Dial(cfg, pool, nil)
		if err != nil {
			return err
		}
		_, err = wsocket.DialTCP(l, raw, host, path, wsHandler{cl: cl})
		return err

	default:
		raw, err := libcli.Dial(cfg, pool, nil)
		if err != nil {
			return err
		}
		session := libtge.NewClient(o.TLS)
		tlsConn := libtcl.NewClient(raw, session, nil)
		wsocket.NewClientTLS(tlsConn, host, path, wsHandler{cl: cl})
		return raw.Register(l)
	}
}

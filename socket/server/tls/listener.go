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

// Package tls wraps socket/server/tcp.Listener so every accepted
// connection is handed a server-side tlsengine.Session before the caller's
// own Handler ever sees decrypted data.
package tls

import (
	"errors"

	libtls "github.com/nabbar/golib/certificates"
	libmph "github.com/nabbar/golib/mpool"
	libcli "github.com/nabbar/golib/socket/client/tcp"
	libtcl "github.com/nabbar/golib/socket/client/tls"
	libskc "github.com/nabbar/golib/socket/config"
	libstc "github.com/nabbar/golib/socket/server/tcp"
	libtge "github.com/nabbar/golib/tlsengine"
)

// errTLSNotEnabled is returned by Listen when cfg has no TLS configuration.
var errTLSNotEnabled = errors.New("socket/server/tls: TLS not enabled in configuration")

// AcceptHandler is notified of every TLS connection the listener accepts,
// once its handshake has completed, mirroring tcp.AcceptHandler's shape at
// the decrypted layer.
type AcceptHandler interface {
	OnAccept(c *libtcl.Conn) libtcl.Handler
	OnListenError(err error)
}

// acceptAdapter bridges the raw tcp.Listener's AcceptHandler onto the TLS
// layer: every accepted raw connection becomes a server tlsengine.Session
// plus a tls.Conn wrapping it, before the caller's AcceptHandler is ever
// consulted.
type acceptAdapter struct {
	tlsCfg libtls.TLSConfig
	h      AcceptHandler
}

func (a *acceptAdapter) OnAccept(raw *libcli.Conn) libcli.Handler {
	session := libtge.NewServerFromCertificates(a.tlsCfg, "")
	conn := libtcl.NewClient(raw, session, nil)
	if a.h != nil {
		conn.SetHandler(a.h.OnAccept(conn))
	}
	return conn
}

func (a *acceptAdapter) OnListenError(err error) {
	if a.h != nil {
		a.h.OnListenError(err)
	}
}

// Listener is a listening TCP socket that TLS-wraps every accepted
// connection via socket/server/tcp.Listener.
type Listener struct {
	*libstc.Listener
}

// Listen opens cfg's listening socket, requiring cfg.GetTLS() to report
// TLS enabled, and wraps every accepted connection in a server
// tlsengine.Session built from the resolved certificates.TLSConfig.
func Listen(cfg libskc.Server, pool *libmph.Pool, h AcceptHandler) (*Listener, error) {
	enabled, tlsCfg := cfg.GetTLS()
	if !enabled {
		return nil, errTLSNotEnabled
	}

	ln, err := libstc.Listen(cfg, pool, &acceptAdapter{tlsCfg: tlsCfg, h: h})
	if err != nil {
		return nil, err
	}

	return &Listener{Listener: ln}, nil
}

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

//go:build linux

package wsocket_test

import (
	"time"

	libmph "github.com/nabbar/golib/mpool"
	libptc "github.com/nabbar/golib/network/protocol"
	"github.com/nabbar/golib/reactor"
	"github.com/nabbar/golib/reactor/backend"
	libcli "github.com/nabbar/golib/socket/client/tcp"
	libskc "github.com/nabbar/golib/socket/config"
	libsrv "github.com/nabbar/golib/socket/server/tcp"
	"github.com/nabbar/golib/wsocket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type wsEchoHandler struct{}

func (wsEchoHandler) OnOpen(c *wsocket.Conn) {}
func (wsEchoHandler) OnMessage(c *wsocket.Conn, opcode wsocket.Opcode, payload []byte) {
	_ = c.WriteMessage(opcode, payload)
}
func (wsEchoHandler) OnClose(c *wsocket.Conn, code wsocket.CloseCode, reason string, err error) {}

type wsAcceptAll struct{}

func (wsAcceptAll) OnAccept(c *libcli.Conn) libcli.Handler {
	return wsocket.ServeTCP(c, wsEchoHandler{})
}
func (wsAcceptAll) OnListenError(err error) {}

type wsCaptureHandler struct {
	opened   chan struct{}
	received chan []byte
}

func (h *wsCaptureHandler) OnOpen(c *wsocket.Conn) { close(h.opened) }
func (h *wsCaptureHandler) OnMessage(c *wsocket.Conn, opcode wsocket.Opcode, payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	h.received <- cp
}
func (h *wsCaptureHandler) OnClose(c *wsocket.Conn, code wsocket.CloseCode, reason string, err error) {
}

var _ = Describe("wsocket client/server over a reactor Loop and TCP transport", func() {
	It("completes the upgrade handshake and echoes a text message", func() {
		be, err := backend.NewEpoll()
		Expect(err).NotTo(HaveOccurred())

		l := reactor.NewLoop(be)
		go func() { _ = l.Run(reactor.RunDefault) }()
		defer l.Close()

		pool := libmph.New(&libmph.Config{ThreadSafe: true})

		srv, err := libsrv.Listen(libskc.Server{
			Network: libptc.NetworkTCP,
			Address: "127.0.0.1:0",
		}, pool, wsAcceptAll{})
		Expect(err).NotTo(HaveOccurred())
		Expect(srv.Register(l)).To(Succeed())
		defer srv.Close()

		rawClient, err := libcli.Dial(libskc.Client{
			Network: libptc.NetworkTCP,
			Address: srv.Addr().String(),
		}, pool, nil)
		Expect(err).NotTo(HaveOccurred())

		capture := &wsCaptureHandler{opened: make(chan struct{}), received: make(chan []byte, 1)}
		wsClient, err := wsocket.DialTCP(l, rawClient, srv.Addr().String(), "/chat", capture)
		Expect(err).NotTo(HaveOccurred())
		defer wsClient.Close()

		Eventually(capture.opened, 2*time.Second).Should(BeClosed())

		Expect(wsClient.WriteMessage(wsocket.OpText, []byte("hello ws"))).To(Succeed())

		Eventually(capture.received, 2*time.Second).Should(Receive(Equal([]byte("hello ws"))))
	})
})

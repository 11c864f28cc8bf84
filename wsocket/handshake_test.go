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

package wsocket_test

import (
	"net"

	"github.com/nabbar/golib/wsocket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RFC 6455 upgrade handshake", func() {
	It("completes over an in-memory pipe and negotiates a matching accept key", func() {
		clientSide, serverSide := net.Pipe()

		serverDone := make(chan struct{})
		var serverPath string
		var serverErr error

		go func() {
			defer close(serverDone)
			serverPath, _, serverErr = wsocket.ServerHandshake(serverSide)
		}()

		_, err := wsocket.ClientHandshake(clientSide, "example.test", "/chat", nil)
		Expect(err).NotTo(HaveOccurred())

		<-serverDone
		Expect(serverErr).NotTo(HaveOccurred())
		Expect(serverPath).To(Equal("/chat"))
	})

	It("fails the client side when the server never upgrades", func() {
		clientSide, serverSide := net.Pipe()

		go func() {
			buf := make([]byte, 4096)
			_, _ = serverSide.Read(buf)
			_, _ = serverSide.Write([]byte("HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"))
		}()

		_, err := wsocket.ClientHandshake(clientSide, "example.test", "/chat", nil)
		Expect(err).To(MatchError(wsocket.ErrBadStatus))
	})
})

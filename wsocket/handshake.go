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
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// websocketGUID is the fixed GUID RFC 6455 §1.3 concatenates onto the
// client's Sec-WebSocket-Key before hashing it into Sec-WebSocket-Accept.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var (
	ErrBadStatus        = errors.New("wsocket: server did not respond 101 Switching Protocols")
	ErrBadUpgradeHeader = errors.New("wsocket: missing or invalid Upgrade/Connection header")
	ErrBadAccept        = errors.New("wsocket: Sec-WebSocket-Accept does not match the request key")
	ErrNotUpgrade       = errors.New("wsocket: request is not a WebSocket upgrade")
	ErrBadVersion       = errors.New("wsocket: Sec-WebSocket-Version must be 13")
)

// acceptKey computes Sec-WebSocket-Accept for a given Sec-WebSocket-Key,
// per RFC 6455 §1.3: base64(sha1(key + GUID)).
func acceptKey(key string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, key)
	_, _ = io.WriteString(h, websocketGUID)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func newClientKey() (string, error) {
	var raw [16]byte
	if _, err := io.ReadFull(rand.Reader, raw[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// ClientHandshake performs the client side of the RFC 6455 upgrade over
// rw: it writes the GET request with the required headers and validates
// the server's 101 response, including Sec-WebSocket-Accept. host is the
// Host header value; path is the request target; extraHeaders may be nil.
// The returned *bufio.Reader may already hold bytes read past the response
// headers (the first frame bytes, if the peer sent them eagerly) and must
// be used for all further reads on rw instead of rw itself.
func ClientHandshake(rw io.ReadWriter, host, path string, extraHeaders http.Header) (*bufio.Reader, error) {
	key, err := newClientKey()
	if err != nil {
		return nil, err
	}

	req := &bytes.Buffer{}
	fmt.Fprintf(req, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(req, "Host: %s\r\n", host)
	fmt.Fprintf(req, "Upgrade: websocket\r\n")
	fmt.Fprintf(req, "Connection: Upgrade\r\n")
	fmt.Fprintf(req, "Sec-WebSocket-Key: %s\r\n", key)
	fmt.Fprintf(req, "Sec-WebSocket-Version: 13\r\n")
	for k, vs := range extraHeaders {
		for _, v := range vs {
			fmt.Fprintf(req, "%s: %s\r\n", k, v)
		}
	}
	req.WriteString("\r\n")

	if _, err = rw.Write(req.Bytes()); err != nil {
		return nil, err
	}

	br := bufio.NewReader(rw)
	resp, err := http.ReadResponse(br, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		return nil, ErrBadStatus
	}
	if !headerEqualFold(resp.Header, "Upgrade", "websocket") || !tokenContains(resp.Header.Get("Connection"), "Upgrade") {
		return nil, ErrBadUpgradeHeader
	}
	if resp.Header.Get("Sec-WebSocket-Accept") != acceptKey(key) {
		return nil, ErrBadAccept
	}

	return br, nil
}

// ServerHandshake performs the server side of the RFC 6455 upgrade over
// rw: it reads the client's GET request, validates it, and writes the 101
// response with the computed Sec-WebSocket-Accept. It returns the
// requested path so the caller can route the connection, along with the
// *bufio.Reader that must be used for all further reads on rw (it may
// already hold bytes read past the request headers).
func ServerHandshake(rw io.ReadWriter) (path string, br *bufio.Reader, err error) {
	br = bufio.NewReader(rw)
	req, err := http.ReadRequest(br)
	if err != nil {
		return "", nil, err
	}

	if req.Method != http.MethodGet {
		return "", nil, ErrNotUpgrade
	}
	if !headerEqualFold(req.Header, "Upgrade", "websocket") || !tokenContains(req.Header.Get("Connection"), "Upgrade") {
		return "", nil, ErrNotUpgrade
	}
	if req.Header.Get("Sec-WebSocket-Version") != "13" {
		return "", nil, ErrBadVersion
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		return "", nil, ErrNotUpgrade
	}

	resp := &bytes.Buffer{}
	resp.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	resp.WriteString("Upgrade: websocket\r\n")
	resp.WriteString("Connection: Upgrade\r\n")
	fmt.Fprintf(resp, "Sec-WebSocket-Accept: %s\r\n", acceptKey(key))
	resp.WriteString("\r\n")

	if _, err = rw.Write(resp.Bytes()); err != nil {
		return "", nil, err
	}

	return req.URL.RequestURI(), br, nil
}

func headerEqualFold(h http.Header, name, want string) bool {
	return strings.EqualFold(h.Get(name), want)
}

// tokenContains reports whether a comma-separated header value (e.g. a
// Connection header that might read "keep-alive, Upgrade") contains want
// as one of its tokens, case-insensitively.
func tokenContains(value, want string) bool {
	for _, tok := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(tok), want) {
			return true
		}
	}
	return false
}

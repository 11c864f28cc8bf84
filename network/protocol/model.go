/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package protocol enumerates the network protocols understood by the
// socket and reactor packages, with parsing and multi-format encoding.
package protocol

// NetworkProtocol is a small enum mirroring the network strings accepted by
// Go's net package (net.Dial, net.Listen), plus unixgram.
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkUnix
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnixGram
)

var codeByProtocol = map[NetworkProtocol]string{
	NetworkUnix:     "unix",
	NetworkTCP:      "tcp",
	NetworkTCP4:     "tcp4",
	NetworkTCP6:     "tcp6",
	NetworkUDP:      "udp",
	NetworkUDP4:     "udp4",
	NetworkUDP6:     "udp6",
	NetworkIP:       "ip",
	NetworkIP4:      "ip4",
	NetworkIP6:      "ip6",
	NetworkUnixGram: "unixgram",
}

var protocolByCode = func() map[string]NetworkProtocol {
	m := make(map[string]NetworkProtocol, len(codeByProtocol))
	for p, c := range codeByProtocol {
		m[c] = p
	}
	return m
}()

// String returns the canonical lowercase network string, or "" if the
// value does not map to a known protocol.
func (p NetworkProtocol) String() string {
	return codeByProtocol[p]
}

// Code is an alias of String kept for symmetry with other golib enums that
// expose both a human label and a wire code; here they are identical.
func (p NetworkProtocol) Code() string {
	return p.String()
}

// Int returns the protocol's ordinal value, 0 for unknown/empty.
func (p NetworkProtocol) Int() int {
	if _, ok := codeByProtocol[p]; !ok {
		return 0
	}
	return int(p)
}

// Int64 is Int as an int64.
func (p NetworkProtocol) Int64() int64 {
	return int64(p.Int())
}

// Uint returns the protocol's ordinal value as uint, 0 for unknown/empty.
func (p NetworkProtocol) Uint() uint {
	return uint(p.Int())
}

// Uint64 returns the protocol's ordinal value as uint64, 0 for unknown/empty.
func (p NetworkProtocol) Uint64() uint64 {
	return uint64(p.Int())
}

// IsStream reports whether the protocol is connection-oriented (TCP family
// or Unix stream sockets).
func (p NetworkProtocol) IsStream() bool {
	switch p {
	case NetworkTCP, NetworkTCP4, NetworkTCP6, NetworkUnix:
		return true
	default:
		return false
	}
}

// IsPacket reports whether the protocol is connectionless (UDP family,
// raw IP, or Unix datagram sockets).
func (p NetworkProtocol) IsPacket() bool {
	switch p {
	case NetworkUDP, NetworkUDP4, NetworkUDP6, NetworkIP, NetworkIP4, NetworkIP6, NetworkUnixGram:
		return true
	default:
		return false
	}
}

// IsUnix reports whether the protocol addresses a filesystem path rather
// than a host:port pair.
func (p NetworkProtocol) IsUnix() bool {
	return p == NetworkUnix || p == NetworkUnixGram
}

// DefaultPort returns the conventional port for this protocol family when
// used by the socket/config/client defaults; 0 means "no convention" (Unix
// sockets, raw IP).
func (p NetworkProtocol) DefaultPort() uint16 {
	switch p {
	case NetworkTCP, NetworkTCP4, NetworkTCP6:
		return 0
	default:
		return 0
	}
}

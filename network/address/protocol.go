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

package address

import (
	"net"

	libptc "github.com/nabbar/golib/network/protocol"
)

// ParseFor parses s the way n's address family expects: a filesystem path
// for the Unix family, host:port otherwise. It also confirms the address
// resolves under n's specific network string (e.g. "tcp4" rejects an IPv6
// literal), which a family-agnostic Parse cannot do on its own.
func ParseFor(n libptc.NetworkProtocol, s string) (Address, error) {
	switch {
	case n.IsUnix():
		if _, err := net.ResolveUnixAddr(n.Code(), s); err != nil {
			return Address{}, err
		}
		return ParseUnix(s), nil

	case n.IsStream():
		if _, err := net.ResolveTCPAddr(n.Code(), s); err != nil {
			return Address{}, err
		}
		return Parse(s)

	case n.IsPacket():
		if _, err := net.ResolveUDPAddr(n.Code(), s); err != nil {
			return Address{}, err
		}
		return Parse(s)

	default:
		return Address{}, &net.AddrError{Err: "unknown network protocol", Addr: s}
	}
}

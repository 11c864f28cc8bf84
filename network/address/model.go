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

// Package address parses host:port endpoints into a typed record, covering
// dotted IPv4, colon-hex IPv6 (including "::" compression), hostnames and
// Unix socket paths, without allocating a reformatted string for the
// common case.
package address

import (
	"net"
	"strconv"
)

// Kind identifies the shape of an Address record.
type Kind uint8

const (
	// KindUnknown is the zero value; Address holds no usable endpoint.
	KindUnknown Kind = iota
	// KindIPv4 is a dotted-decimal IPv4 host.
	KindIPv4
	// KindIPv6 is a colon-hex IPv6 host.
	KindIPv6
	// KindHost is a hostname requiring resolution.
	KindHost
	// KindUnix is a filesystem path for a Unix domain socket.
	KindUnix
)

// Address is a parsed network endpoint: either an IP/hostname plus port, or
// a Unix socket path.
type Address struct {
	Kind Kind
	Host string
	IP   net.IP
	Port uint16
	Path string
}

// IsZero reports whether a has not been populated by Parse.
func (a Address) IsZero() bool {
	return a.Kind == KindUnknown
}

// String renders the address back into host:port or path form.
func (a Address) String() string {
	switch a.Kind {
	case KindUnix:
		return a.Path
	case KindIPv6:
		return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
	case KindIPv4, KindHost:
		return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
	default:
		return ""
	}
}

// ParseUnix builds a Unix-socket Address from a filesystem path.
func ParseUnix(path string) Address {
	return Address{Kind: KindUnix, Path: path}
}

// Parse splits s into host and port and classifies the host as IPv4, IPv6,
// or a plain hostname. Port 0 means "kernel-assigned", matching net.Listen
// semantics for an empty port component.
func Parse(s string) (Address, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Address{}, err
	}

	var port uint64
	if portStr != "" {
		port, err = strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return Address{}, err
		}
	}

	a := Address{Host: host, Port: uint16(port)}

	if ip := net.ParseIP(host); ip != nil {
		a.IP = ip
		if ip.To4() != nil {
			a.Kind = KindIPv4
		} else {
			a.Kind = KindIPv6
		}
		return a, nil
	}

	a.Kind = KindHost
	return a, nil
}

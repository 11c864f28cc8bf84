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

// Package config defines the value-type options accepted by the socket
// client and server constructors: network/address selection, optional TLS,
// and (for Unix-family servers) socket file ownership/permissions.
package config

import (
	libtls "github.com/nabbar/golib/certificates"
	libdur "github.com/nabbar/golib/duration"
	libprm "github.com/nabbar/golib/file/perm"
	liblog "github.com/nabbar/golib/logger"
	libptc "github.com/nabbar/golib/network/protocol"
)

// ClientTLS carries the TLS options for an outbound connection.
type ClientTLS struct {
	// Enabled turns a plain transport into a TLS one. Only valid for
	// stream protocols (TCP family, Unix).
	Enabled bool

	// ServerName is used both for SNI and certificate verification; it is
	// mandatory when Enabled is true.
	ServerName string

	// Config is the certificate/cipher/curve facade shared with the rest
	// of the TLS stack (certificates.Config).
	Config libtls.Config

	// def, when set through DefaultTLS, seeds fields left zero in Config.
	def libtls.TLSConfig
}

// ServerTLS carries the TLS options for a listening socket.
type ServerTLS struct {
	// Enabled turns a plain listener into a TLS one. Only valid for stream
	// protocols.
	Enabled bool

	// Config is the certificate/cipher/curve facade shared with the rest
	// of the TLS stack (certificates.Config).
	Config libtls.Config

	// def, when set through DefaultTLS, seeds fields left zero in Config.
	def libtls.TLSConfig
}

// Client describes an outbound socket connection.
type Client struct {
	// Network selects the dial family (tcp/tcp4/tcp6/udp/udp4/udp6/unix/unixgram).
	Network libptc.NetworkProtocol

	// Address is a host:port pair for network protocols, or a filesystem
	// path for Unix-family protocols.
	Address string

	// TLS configures an optional TLS wrapping of the transport.
	TLS ClientTLS

	// Log, when set, is consulted by the socket client for connect/close/
	// error events. A nil Log logs nothing (see logger.Resolve).
	Log liblog.FuncLog
}

// Logger returns c.Log resolved through logger.Resolve, so callers never
// need to nil-check it themselves.
func (c Client) Logger() liblog.Logger {
	return liblog.Resolve(c.Log)
}

// Server describes a listening socket.
type Server struct {
	// Network selects the listen family.
	Network libptc.NetworkProtocol

	// Address is a host:port pair for network protocols, or a filesystem
	// path for Unix-family protocols.
	Address string

	// PermFile is the file mode applied to a Unix/Unixgram socket file
	// after listen. Ignored for network protocols.
	PermFile libprm.Perm

	// GroupPerm is the group id applied to a Unix/Unixgram socket file
	// after listen; -1 keeps the process's current group, 0 is root.
	// Ignored for network protocols.
	GroupPerm int32

	// ConIdleTimeout, when non-zero, closes accepted connections that have
	// had no read/write activity for this long.
	ConIdleTimeout libdur.Duration

	// TLS configures an optional TLS wrapping of the listener.
	TLS ServerTLS

	// Log, when set, is consulted by the socket server for accept/close/
	// error events. A nil Log logs nothing (see logger.Resolve).
	Log liblog.FuncLog
}

// Logger returns s.Log resolved through logger.Resolve, so callers never
// need to nil-check it themselves.
func (s Server) Logger() liblog.Logger {
	return liblog.Resolve(s.Log)
}

// GetTLS returns whether TLS is enabled for this server and, if so, the
// resolved TLSConfig facade (nil when disabled).
func (s Server) GetTLS() (bool, libtls.TLSConfig) {
	if !s.TLS.Enabled {
		return false, nil
	}
	return true, s.TLS.Config.NewFrom(s.TLS.def)
}

// DefaultTLS records a fallback TLSConfig used by GetTLS to fill in any
// field left at its zero value in TLS.Config. A nil argument is a
// documented no-op.
func (s *Server) DefaultTLS(def libtls.TLSConfig) {
	if def == nil {
		return
	}
	s.TLS.def = def
}

// GetTLS returns whether TLS is enabled for this client, the resolved
// TLSConfig facade (nil when disabled), and the configured ServerName.
func (c Client) GetTLS() (bool, libtls.TLSConfig, string) {
	if !c.TLS.Enabled {
		return false, nil, ""
	}
	return true, c.TLS.Config.NewFrom(c.TLS.def), c.TLS.ServerName
}

// DefaultTLS records a fallback TLSConfig used by GetTLS to fill in any
// field left at its zero value in TLS.Config. A nil argument is a
// documented no-op.
func (c *Client) DefaultTLS(def libtls.TLSConfig) {
	if def == nil {
		return
	}
	c.TLS.def = def
}

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

package config

import (
	libadr "github.com/nabbar/golib/network/address"
	libptc "github.com/nabbar/golib/network/protocol"
)

// resolveAddress defers to network/address.ParseFor, which both resolves
// addr under n's specific network string (rejecting e.g. an IPv6 literal
// under "tcp4") and hands back the parsed libadr.Address the reactor's
// socket handles will eventually bind to.
func resolveAddress(n libptc.NetworkProtocol, addr string) error {
	if n == libptc.NetworkEmpty {
		return ErrInvalidProtocol
	}
	_, err := libadr.ParseFor(n, addr)
	return err
}

// Validate checks that Network is a known protocol, Address resolves for
// that protocol family, and any enabled TLS options are coherent: TLS is
// only valid for stream protocols, and a client enabling TLS must provide
// a ServerName.
func (c Client) Validate() error {
	if c.Network == libptc.NetworkEmpty {
		return ErrInvalidProtocol
	}

	if err := resolveAddress(c.Network, c.Address); err != nil {
		return err
	}

	if c.TLS.Enabled {
		if !c.Network.IsStream() {
			return ErrInvalidTLSConfig
		}
		if c.TLS.ServerName == "" {
			return ErrInvalidTLSConfig
		}
	}

	return nil
}

// Validate checks that Network is a known protocol, Address resolves for
// that protocol family, GroupPerm (Unix-family only) is within MaxGID, and
// any enabled TLS options are coherent (stream protocols only).
func (s Server) Validate() error {
	if s.Network == libptc.NetworkEmpty {
		return ErrInvalidProtocol
	}

	if err := resolveAddress(s.Network, s.Address); err != nil {
		return err
	}

	if s.Network.IsUnix() && s.GroupPerm > MaxGID {
		return ErrInvalidGroup
	}

	if s.TLS.Enabled {
		if !s.Network.IsStream() {
			return ErrInvalidTLSConfig
		}
		if len(s.TLS.Config.Certs) == 0 && !s.TLS.Config.InheritDefault {
			return ErrInvalidTLSConfig
		}
	}

	return nil
}

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

// Package raw bridges Go's net.Conn/net.Listener world with the reactor's
// readiness-multiplexer backend: it resolves socket.config records into
// dialed/listened sockets, sets them non-blocking, and extracts the raw
// file descriptor the backend registers for readiness events.
package raw

import (
	"net"
	"os"
	"syscall"

	libskc "github.com/nabbar/golib/socket/config"
)

// Syscaller is implemented by every net.Conn / net.Listener / net.PacketConn
// Go hands back for TCP, UDP and Unix sockets.
type Syscaller interface {
	SyscallConn() (syscall.RawConn, error)
}

// FD extracts the underlying file descriptor of a connection or listener so
// it can be registered with a reactor/backend poller. The descriptor stays
// valid only as long as c is not closed; callers must not close the file
// built from it.
func FD(c Syscaller) (int, error) {
	raw, err := c.SyscallConn()
	if err != nil {
		return -1, err
	}

	var fd int

	if err = raw.Control(func(s uintptr) {
		fd = int(s)
	}); err != nil {
		return -1, err
	}

	return fd, nil
}

// Listen opens a listening socket for the given server configuration. TCP
// and Unix configurations yield a stream net.Listener; UDP and Unixgram
// configurations yield a net.PacketConn instead, returned as listener=nil.
func Listen(cfg libskc.Server) (net.Listener, net.PacketConn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	switch {
	case cfg.Network.IsStream():
		l, err := net.Listen(cfg.Network.Code(), cfg.Address)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Network.IsUnix() {
			_ = os.Chmod(cfg.Address, os.FileMode(cfg.PermFile))
			chown(cfg.Address, cfg.GroupPerm)
		}
		return l, nil, nil
	default:
		p, err := net.ListenPacket(cfg.Network.Code(), cfg.Address)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Network.IsUnix() {
			_ = os.Chmod(cfg.Address, os.FileMode(cfg.PermFile))
			chown(cfg.Address, cfg.GroupPerm)
		}
		return nil, p, nil
	}
}

// Dial opens an outbound connection for the given client configuration.
func Dial(cfg libskc.Client) (net.Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Network.Code() == "unixgram" {
		// A dialed unixgram socket that never bound a local address stays
		// unnamed, so a peer's reply has nowhere to go back to; give it an
		// ephemeral local path the way net.Dial auto-assigns an ephemeral
		// port for UDP.
		return net.DialUnix("unixgram", ephemeralUnixgramAddr(), &net.UnixAddr{Name: cfg.Address, Net: "unixgram"})
	}

	return net.Dial(cfg.Network.Code(), cfg.Address)
}

func ephemeralUnixgramAddr() *net.UnixAddr {
	f, err := os.CreateTemp("", "reactor-unixgram-*.sock")
	if err != nil {
		return nil
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return &net.UnixAddr{Name: name, Net: "unixgram"}
}

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

//go:build windows

package backend

import (
	"net"
	"syscall"

	"golang.org/x/sys/windows"
)

// wakePair builds a loopback TCP pair standing in for the Unix self-pipe:
// Windows has no anonymous pipe WSAPoll can watch, so a 127.0.0.1 listener
// accepting a single local connection is the portable substitute.
func wakePair() (r, w windows.Handle, err error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, 0, err
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		c, e := ln.Accept()
		if e != nil {
			acceptErr <- e
			return
		}
		accepted <- c
	}()

	wConn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		return 0, 0, err
	}

	var rConn net.Conn
	select {
	case rConn = <-accepted:
	case err = <-acceptErr:
		_ = wConn.Close()
		return 0, 0, err
	}

	rHandle, err := handleOf(rConn)
	if err != nil {
		return 0, 0, err
	}
	wHandle, err := handleOf(wConn)
	if err != nil {
		return 0, 0, err
	}
	return rHandle, wHandle, nil
}

func handleOf(c net.Conn) (windows.Handle, error) {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return 0, &net.OpError{Op: "syscallconn", Err: syscall.EINVAL}
	}

	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}

	var h windows.Handle
	ctrlErr := rc.Control(func(fd uintptr) {
		h = windows.Handle(fd)
	})
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return h, nil
}

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

package mqtt

import "errors"

var (
	// ErrNotConnected is returned by Publish/Subscribe/Unsubscribe when the
	// client is not in the CONNECTED state.
	ErrNotConnected = errors.New("mqtt: client is not connected")

	// ErrAlreadyConnected is returned by Connect when the client is already
	// connecting or connected.
	ErrAlreadyConnected = errors.New("mqtt: client is already connected")

	// ErrConnectTimeout is reported to the failure sink when no CONNACK
	// arrives before Options.ConnectTimeout elapses.
	ErrConnectTimeout = errors.New("mqtt: timed out waiting for CONNACK")

	// ErrKeepAliveTimeout is reported to the failure sink when no packet of
	// any kind has been seen from the broker for 1.5x the keepalive
	// interval (spec.md §4.9 "Keepalive").
	ErrKeepAliveTimeout = errors.New("mqtt: keepalive timeout, no broker activity")

	// ErrRefused wraps a non-zero CONNACK return code / reason code.
	ErrRefused = errors.New("mqtt: broker refused the connection")

	// ErrClosing names a client that is closing. The client itself never
	// returns or reports it: after Disconnect, OnDisconnect receives the
	// transport's own close error (nil for a requested close).
	ErrClosing = errors.New("mqtt: client is closing")

	// ErrMaxReconnectAttempts is reported once auto-reconnect gives up
	// after Options.Reconnect.MaxAttempts failed dial attempts.
	ErrMaxReconnectAttempts = errors.New("mqtt: exhausted reconnect attempts")
)

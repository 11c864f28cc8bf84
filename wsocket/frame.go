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

// Package wsocket implements RFC 6455 WebSocket framing, the HTTP/1.1
// upgrade handshake, and a client/server connection layered on
// socket/client/tcp and socket/client/tls.
package wsocket

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"
)

// Opcode identifies a WebSocket frame's payload interpretation.
type Opcode byte

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

func (o Opcode) String() string {
	switch o {
	case OpContinuation:
		return "continuation"
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return "unknown"
	}
}

func (o Opcode) isControl() bool { return o >= OpClose }

// maxControlPayload is the RFC 6455 §5.5 limit on control frame payloads.
const maxControlPayload = 125

var (
	ErrFrameTooLarge     = errors.New("wsocket: frame payload exceeds configured limit")
	ErrControlTooLarge   = errors.New("wsocket: control frame payload exceeds 125 bytes")
	ErrControlFragmented = errors.New("wsocket: control frames must not be fragmented")
	ErrReservedBits      = errors.New("wsocket: reserved bits must be zero")
	ErrInvalidUTF8       = errors.New("wsocket: text payload is not valid UTF-8")
	ErrUnmaskedFromPeer  = errors.New("wsocket: client frames must be masked")
	ErrMaskedFromServer  = errors.New("wsocket: server frames must not be masked")
)

// Frame is one decoded RFC 6455 frame.
type Frame struct {
	Fin     bool
	Opcode  Opcode
	Masked  bool
	Payload []byte
}

// ReadFrame decodes exactly one frame from r. maxPayload, when non-zero,
// rejects frames declaring a larger length before any payload is read.
func ReadFrame(r io.Reader, maxPayload int64) (Frame, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}

	fin := hdr[0]&0x80 != 0
	rsv := hdr[0] & 0x70
	opcode := Opcode(hdr[0] & 0x0F)
	if rsv != 0 {
		return Frame{}, ErrReservedBits
	}

	masked := hdr[1]&0x80 != 0
	length := int64(hdr[1] & 0x7F)

	switch length {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Frame{}, err
		}
		length = int64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Frame{}, err
		}
		length = int64(binary.BigEndian.Uint64(ext[:]))
	}

	if opcode.isControl() && length > maxControlPayload {
		return Frame{}, ErrControlTooLarge
	}
	if opcode.isControl() && !fin {
		return Frame{}, ErrControlFragmented
	}
	if maxPayload > 0 && length > maxPayload {
		return Frame{}, ErrFrameTooLarge
	}

	var maskKey [4]byte
	if masked {
		if _, err := io.ReadFull(r, maskKey[:]); err != nil {
			return Frame{}, err
		}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, err
	}

	if masked {
		applyMask(payload, maskKey)
	}

	if opcode == OpText && fin {
		if !utf8.Valid(payload) {
			return Frame{}, ErrInvalidUTF8
		}
	}

	return Frame{Fin: fin, Opcode: opcode, Masked: masked, Payload: payload}, nil
}

// WriteFrame encodes one frame to w. Client connections must pass
// mask=true (RFC 6455 §5.1: "a client MUST mask all frames"); servers must
// pass mask=false.
func WriteFrame(w io.Writer, fin bool, opcode Opcode, payload []byte, mask bool) error {
	if opcode.isControl() && len(payload) > maxControlPayload {
		return ErrControlTooLarge
	}

	var hdr []byte
	b0 := byte(opcode)
	if fin {
		b0 |= 0x80
	}

	length := len(payload)
	switch {
	case length <= 125:
		hdr = []byte{b0, byte(length)}
	case length <= 0xFFFF:
		hdr = make([]byte, 4)
		hdr[0] = b0
		hdr[1] = 126
		binary.BigEndian.PutUint16(hdr[2:], uint16(length))
	default:
		hdr = make([]byte, 10)
		hdr[0] = b0
		hdr[1] = 127
		binary.BigEndian.PutUint64(hdr[2:], uint64(length))
	}

	if mask {
		hdr[1] |= 0x80
	}

	if _, err := w.Write(hdr); err != nil {
		return err
	}

	if !mask {
		_, err := w.Write(payload)
		return err
	}

	var maskKey [4]byte
	if _, err := io.ReadFull(rand.Reader, maskKey[:]); err != nil {
		return err
	}
	if _, err := w.Write(maskKey[:]); err != nil {
		return err
	}

	masked := make([]byte, len(payload))
	copy(masked, payload)
	applyMask(masked, maskKey)
	_, err := w.Write(masked)
	return err
}

func applyMask(data []byte, key [4]byte) {
	for i := range data {
		data[i] ^= key[i%4]
	}
}

// CloseCode is the 2-byte status code carried by a close frame's payload
// (RFC 6455 §7.4).
type CloseCode uint16

const (
	CloseNormal          CloseCode = 1000
	CloseGoingAway       CloseCode = 1001
	CloseProtocolError   CloseCode = 1002
	CloseUnsupportedData CloseCode = 1003
	CloseInvalidPayload  CloseCode = 1007
	ClosePolicyViolation CloseCode = 1008
	CloseMessageTooBig   CloseCode = 1009
	CloseInternalError   CloseCode = 1011
)

// EncodeClosePayload builds a close frame payload: a big-endian 2-byte
// code followed by a UTF-8 reason.
func EncodeClosePayload(code CloseCode, reason string) []byte {
	buf := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(buf, uint16(code))
	copy(buf[2:], reason)
	return buf
}

// DecodeClosePayload splits a close frame payload back into its code and
// reason. An empty payload yields CloseNormal with no reason, per RFC 6455
// §7.1.5.
func DecodeClosePayload(payload []byte) (CloseCode, string) {
	if len(payload) < 2 {
		return CloseNormal, ""
	}
	return CloseCode(binary.BigEndian.Uint16(payload)), string(payload[2:])
}

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

// Package wire implements the OASIS MQTT 3.1, 3.1.1 and 5.0 control packet
// codec: a streaming finite-state machine decoder plus symmetric encoders,
// independent of any transport or client state machine.
package wire

import "errors"

// Version identifies the protocol level carried in a CONNECT packet.
type Version byte

const (
	Version31  Version = 3
	Version311 Version = 4
	Version5   Version = 5
)

// protocolName returns the CONNECT protocol name string for v, and false if
// v is not a recognised level.
func protocolName(v Version) (string, bool) {
	switch v {
	case Version31:
		return "MQIsdp", true
	case Version311, Version5:
		return "MQTT", true
	default:
		return "", false
	}
}

// Type is the MQTT control packet type, the high nibble of the fixed
// header's first byte.
type Type byte

const (
	TypeReserved0   Type = 0
	TypeCONNECT     Type = 1
	TypeCONNACK     Type = 2
	TypePUBLISH     Type = 3
	TypePUBACK      Type = 4
	TypePUBREC      Type = 5
	TypePUBREL      Type = 6
	TypePUBCOMP     Type = 7
	TypeSUBSCRIBE   Type = 8
	TypeSUBACK      Type = 9
	TypeUNSUBSCRIBE Type = 10
	TypeUNSUBACK    Type = 11
	TypePINGREQ     Type = 12
	TypePINGRESP    Type = 13
	TypeDISCONNECT  Type = 14
	TypeAUTH        Type = 15 // v5 only
)

func (t Type) String() string {
	switch t {
	case TypeCONNECT:
		return "CONNECT"
	case TypeCONNACK:
		return "CONNACK"
	case TypePUBLISH:
		return "PUBLISH"
	case TypePUBACK:
		return "PUBACK"
	case TypePUBREC:
		return "PUBREC"
	case TypePUBREL:
		return "PUBREL"
	case TypePUBCOMP:
		return "PUBCOMP"
	case TypeSUBSCRIBE:
		return "SUBSCRIBE"
	case TypeSUBACK:
		return "SUBACK"
	case TypeUNSUBSCRIBE:
		return "UNSUBSCRIBE"
	case TypeUNSUBACK:
		return "UNSUBACK"
	case TypePINGREQ:
		return "PINGREQ"
	case TypePINGRESP:
		return "PINGRESP"
	case TypeDISCONNECT:
		return "DISCONNECT"
	case TypeAUTH:
		return "AUTH"
	default:
		return "RESERVED"
	}
}

// FixedHeader is the decoded first byte plus remaining length of any
// control packet.
type FixedHeader struct {
	Type            Type
	Dup             bool
	QoS             byte
	Retain          bool
	RemainingLength int
}

var (
	ErrRemainingLengthTooLarge  = errors.New("mqtt/wire: remaining length exceeds 4-byte varint encoding (256 MiB)")
	ErrRemainingLengthMalformed = errors.New("mqtt/wire: malformed remaining-length varint")
	ErrUnknownPacketType        = errors.New("mqtt/wire: unknown control packet type")
	ErrPacketTooLarge           = errors.New("mqtt/wire: packet exceeds configured max payload")
)

const maxRemainingLength = 268435455 // 0xFFFFFFF, 4-byte varint ceiling per spec

// decodeFixedHeaderByte splits the fixed header's first byte into type and
// flags per packet-type-specific semantics (PUBLISH carries dup/qos/retain;
// SUBSCRIBE/UNSUBSCRIBE/PUBREL reserve 0x02 in the low nibble; everything
// else ignores the low nibble).
func decodeFixedHeaderByte(b byte) FixedHeader {
	h := FixedHeader{Type: Type(b >> 4)}
	if h.Type == TypePUBLISH {
		h.Dup = b&0x08 != 0
		h.QoS = (b >> 1) & 0x03
		h.Retain = b&0x01 != 0
	}
	return h
}

// encodeFixedHeaderByte is the inverse of decodeFixedHeaderByte.
func encodeFixedHeaderByte(t Type, dup bool, qos byte, retain bool) byte {
	b := byte(t) << 4
	switch t {
	case TypePUBLISH:
		if dup {
			b |= 0x08
		}
		b |= (qos & 0x03) << 1
		if retain {
			b |= 0x01
		}
	case TypeSUBSCRIBE, TypeUNSUBSCRIBE, TypePUBREL:
		b |= 0x02
	}
	return b
}

// EncodeRemainingLength appends n's varint encoding (1-4 bytes, little
// endian base-128, continuation bit 0x80) to buf and returns the result.
func EncodeRemainingLength(buf []byte, n int) ([]byte, error) {
	if n < 0 || n > maxRemainingLength {
		return nil, ErrRemainingLengthTooLarge
	}
	for {
		b := byte(n % 128)
		n /= 128
		if n > 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if n == 0 {
			return buf, nil
		}
	}
}

// DecodeRemainingLength reads a varint-encoded remaining length from buf
// starting at offset off. It returns the decoded value, the number of
// bytes consumed, and an error if the encoding is malformed (more than 4
// bytes) or buf does not yet hold enough bytes (ErrShortBuffer, a signal
// to the caller to wait for more data rather than a protocol violation).
func DecodeRemainingLength(buf []byte, off int) (value int, consumed int, err error) {
	multiplier := 1
	for i := 0; i < 4; i++ {
		if off+i >= len(buf) {
			return 0, 0, ErrShortBuffer
		}
		b := buf[off+i]
		value += int(b&0x7f) * multiplier
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
		multiplier *= 128
	}
	return 0, 0, ErrRemainingLengthMalformed
}

// ErrShortBuffer signals the parser needs more bytes before it can make
// progress; it is never surfaced to a caller's error callback.
var ErrShortBuffer = errors.New("mqtt/wire: short buffer")

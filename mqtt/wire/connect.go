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

package wire

import "errors"

var (
	ErrBadProtocolName  = errors.New("mqtt/wire: CONNECT protocol name does not match any known level")
	ErrBadProtocolLevel = errors.New("mqtt/wire: CONNECT protocol level does not match its protocol name")
)

// Connect is a decoded or to-be-encoded CONNECT packet.
type Connect struct {
	Version      Version
	ClientID     string
	CleanSession bool
	KeepAlive    uint16

	HasWill     bool
	WillTopic   string
	WillMessage []byte
	WillQoS     byte
	WillRetain  bool

	HasUsername bool
	Username    string
	HasPassword bool
	Password    []byte

	Properties Properties // v5 only; ignored for earlier versions
}

// EncodeConnect builds a CONNECT packet body (fixed header included).
func EncodeConnect(c Connect) ([]byte, error) {
	name, ok := protocolName(c.Version)
	if !ok {
		return nil, ErrBadProtocolName
	}

	var vh []byte
	vh = encodeUTF8String(vh, name)
	vh = append(vh, byte(c.Version))

	var flags byte
	if c.HasUsername {
		flags |= 0x80
	}
	if c.HasPassword {
		flags |= 0x40
	}
	if c.HasWill {
		flags |= 0x04
		flags |= (c.WillQoS & 0x03) << 3
		if c.WillRetain {
			flags |= 0x20
		}
	}
	if c.CleanSession {
		flags |= 0x02
	}
	vh = append(vh, flags)
	vh = encodeUint16(vh, c.KeepAlive)

	if c.Version == Version5 {
		var err error
		vh, err = encodeProperties(vh, c.Properties)
		if err != nil {
			return nil, err
		}
	}

	payload := encodeUTF8String(nil, c.ClientID)
	if c.HasWill {
		if c.Version == Version5 {
			payload, _ = encodeProperties(payload, Properties{})
		}
		payload = encodeUTF8String(payload, c.WillTopic)
		payload = encodeBinaryData(payload, c.WillMessage)
	}
	if c.HasUsername {
		payload = encodeUTF8String(payload, c.Username)
	}
	if c.HasPassword {
		payload = encodeBinaryData(payload, c.Password)
	}

	body := append(vh, payload...)
	return encodePacket(TypeCONNECT, false, 0, false, body)
}

// DecodeConnect parses a CONNECT packet's variable header and payload
// (buf holds exactly RemainingLength bytes, past the fixed header).
func DecodeConnect(buf []byte) (Connect, error) {
	var c Connect

	name, off, err := decodeUTF8String(buf, 0)
	if err != nil {
		return c, err
	}
	if off >= len(buf) {
		return c, ErrShortBuffer
	}
	c.Version = Version(buf[off])
	off++

	wantName, ok := protocolName(c.Version)
	if !ok {
		return c, ErrBadProtocolLevel
	}
	if name != wantName {
		return c, ErrBadProtocolName
	}

	if off >= len(buf) {
		return c, ErrShortBuffer
	}
	flags := buf[off]
	off++
	c.HasUsername = flags&0x80 != 0
	c.HasPassword = flags&0x40 != 0
	c.WillRetain = flags&0x20 != 0
	c.WillQoS = (flags >> 3) & 0x03
	c.HasWill = flags&0x04 != 0
	c.CleanSession = flags&0x02 != 0

	c.KeepAlive, err = decodeUint16(buf, off)
	if err != nil {
		return c, err
	}
	off += 2

	if c.Version == Version5 {
		c.Properties, off, err = decodeProperties(buf, off)
		if err != nil {
			return c, err
		}
	}

	c.ClientID, off, err = decodeUTF8String(buf, off)
	if err != nil {
		return c, err
	}

	if c.HasWill {
		if c.Version == Version5 {
			_, off, err = decodeProperties(buf, off)
			if err != nil {
				return c, err
			}
		}
		c.WillTopic, off, err = decodeUTF8String(buf, off)
		if err != nil {
			return c, err
		}
		c.WillMessage, off, err = decodeBinaryData(buf, off)
		if err != nil {
			return c, err
		}
	}

	if c.HasUsername {
		c.Username, off, err = decodeUTF8String(buf, off)
		if err != nil {
			return c, err
		}
	}
	if c.HasPassword {
		c.Password, off, err = decodeBinaryData(buf, off)
		if err != nil {
			return c, err
		}
	}

	return c, nil
}

// Connack is a decoded or to-be-encoded CONNACK packet.
type Connack struct {
	Version        Version
	SessionPresent bool
	ReturnCode     byte
	Properties     Properties
}

func EncodeConnack(c Connack) ([]byte, error) {
	var flags byte
	if c.SessionPresent {
		flags = 0x01
	}
	body := []byte{flags, c.ReturnCode}
	if c.Version == Version5 {
		var err error
		body, err = encodeProperties(body, c.Properties)
		if err != nil {
			return nil, err
		}
	}
	return encodePacket(TypeCONNACK, false, 0, false, body)
}

func DecodeConnack(buf []byte, v Version) (Connack, error) {
	c := Connack{Version: v}
	if len(buf) < 2 {
		return c, ErrShortBuffer
	}
	c.SessionPresent = buf[0]&0x01 != 0
	c.ReturnCode = buf[1]
	if v == Version5 && len(buf) > 2 {
		props, _, err := decodeProperties(buf, 2)
		if err != nil {
			return c, err
		}
		c.Properties = props
	}
	return c, nil
}

// encodePacket prepends a fixed header (type/flags byte + remaining-length
// varint) to body.
func encodePacket(t Type, dup bool, qos byte, retain bool, body []byte) ([]byte, error) {
	out := []byte{encodeFixedHeaderByte(t, dup, qos, retain)}
	out, err := EncodeRemainingLength(out, len(body))
	if err != nil {
		return nil, err
	}
	return append(out, body...), nil
}

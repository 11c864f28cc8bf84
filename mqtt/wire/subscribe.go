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

// Subscription pairs one topic filter with its requested QoS, the unit
// SUBSCRIBE repeats in its payload.
type Subscription struct {
	Filter string
	QoS    byte
}

// Subscribe is a decoded or to-be-encoded SUBSCRIBE packet.
type Subscribe struct {
	Version       Version
	PacketID      uint16
	Properties    Properties
	Subscriptions []Subscription
}

func EncodeSubscribe(s Subscribe) ([]byte, error) {
	body := encodeUint16(nil, s.PacketID)
	if s.Version == Version5 {
		var err error
		body, err = encodeProperties(body, s.Properties)
		if err != nil {
			return nil, err
		}
	}
	for _, sub := range s.Subscriptions {
		body = encodeUTF8String(body, sub.Filter)
		body = append(body, sub.QoS&0x03)
	}
	return encodePacket(TypeSUBSCRIBE, false, 0, false, body)
}

func DecodeSubscribe(buf []byte, v Version) (Subscribe, error) {
	s := Subscribe{Version: v}

	pid, err := decodeUint16(buf, 0)
	if err != nil {
		return s, err
	}
	s.PacketID = pid
	off := 2

	if v == Version5 {
		s.Properties, off, err = decodeProperties(buf, off)
		if err != nil {
			return s, err
		}
	}

	for off < len(buf) {
		var filter string
		filter, off, err = decodeUTF8String(buf, off)
		if err != nil {
			return s, err
		}
		if off >= len(buf) {
			return s, ErrShortBuffer
		}
		qos := buf[off] & 0x03
		off++
		s.Subscriptions = append(s.Subscriptions, Subscription{Filter: filter, QoS: qos})
	}
	return s, nil
}

// Suback is a decoded or to-be-encoded SUBACK packet: a parallel
// reason-code array, one per filter in the matching SUBSCRIBE.
type Suback struct {
	Version     Version
	PacketID    uint16
	Properties  Properties
	ReturnCodes []byte
}

func EncodeSuback(s Suback) ([]byte, error) {
	body := encodeUint16(nil, s.PacketID)
	if s.Version == Version5 {
		var err error
		body, err = encodeProperties(body, s.Properties)
		if err != nil {
			return nil, err
		}
	}
	body = append(body, s.ReturnCodes...)
	return encodePacket(TypeSUBACK, false, 0, false, body)
}

func DecodeSuback(buf []byte, v Version) (Suback, error) {
	s := Suback{Version: v}
	pid, err := decodeUint16(buf, 0)
	if err != nil {
		return s, err
	}
	s.PacketID = pid
	off := 2

	if v == Version5 {
		s.Properties, off, err = decodeProperties(buf, off)
		if err != nil {
			return s, err
		}
	}
	s.ReturnCodes = append([]byte(nil), buf[off:]...)
	return s, nil
}

// Unsubscribe is a decoded or to-be-encoded UNSUBSCRIBE packet.
type Unsubscribe struct {
	Version    Version
	PacketID   uint16
	Properties Properties
	Filters    []string
}

func EncodeUnsubscribe(u Unsubscribe) ([]byte, error) {
	body := encodeUint16(nil, u.PacketID)
	if u.Version == Version5 {
		var err error
		body, err = encodeProperties(body, u.Properties)
		if err != nil {
			return nil, err
		}
	}
	for _, f := range u.Filters {
		body = encodeUTF8String(body, f)
	}
	return encodePacket(TypeUNSUBSCRIBE, false, 0, false, body)
}

func DecodeUnsubscribe(buf []byte, v Version) (Unsubscribe, error) {
	u := Unsubscribe{Version: v}
	pid, err := decodeUint16(buf, 0)
	if err != nil {
		return u, err
	}
	u.PacketID = pid
	off := 2

	if v == Version5 {
		u.Properties, off, err = decodeProperties(buf, off)
		if err != nil {
			return u, err
		}
	}
	for off < len(buf) {
		var f string
		f, off, err = decodeUTF8String(buf, off)
		if err != nil {
			return u, err
		}
		u.Filters = append(u.Filters, f)
	}
	return u, nil
}

// Unsuback is a decoded or to-be-encoded UNSUBACK packet. v3.1.1 carries
// no payload beyond the packet ID; v5 adds a parallel reason-code array.
type Unsuback struct {
	Version     Version
	PacketID    uint16
	Properties  Properties
	ReasonCodes []byte
}

func EncodeUnsuback(u Unsuback) ([]byte, error) {
	body := encodeUint16(nil, u.PacketID)
	if u.Version == Version5 {
		var err error
		body, err = encodeProperties(body, u.Properties)
		if err != nil {
			return nil, err
		}
		body = append(body, u.ReasonCodes...)
	}
	return encodePacket(TypeUNSUBACK, false, 0, false, body)
}

func DecodeUnsuback(buf []byte, v Version) (Unsuback, error) {
	u := Unsuback{Version: v}
	pid, err := decodeUint16(buf, 0)
	if err != nil {
		return u, err
	}
	u.PacketID = pid

	if v == Version5 && len(buf) > 2 {
		off := 2
		u.Properties, off, err = decodeProperties(buf, off)
		if err != nil {
			return u, err
		}
		u.ReasonCodes = append([]byte(nil), buf[off:]...)
	}
	return u, nil
}

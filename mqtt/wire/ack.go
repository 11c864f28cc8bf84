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

// Ack is the shared shape of PUBACK, PUBREC, PUBREL and PUBCOMP: a packet
// ID plus, in v5 only and only when the remaining length allows it, a
// reason code and property block.
type Ack struct {
	Type       Type
	Version    Version
	PacketID   uint16
	ReasonCode byte
	Properties Properties
	// HasReasonCode distinguishes "reason code 0x00, present" from "no
	// reason code field at all" (v3.1.1, or v5 with remaining length 2).
	HasReasonCode bool
}

// EncodeAck builds a PUBACK/PUBREC/PUBREL/PUBCOMP packet.
func EncodeAck(a Ack) ([]byte, error) {
	body := encodeUint16(nil, a.PacketID)
	if a.Version == Version5 && a.HasReasonCode {
		body = append(body, a.ReasonCode)
		if len(a.Properties.UserProperties) > 0 || a.Properties.SessionExpiryInterval != nil || a.Properties.ReceiveMaximum != nil {
			var err error
			body, err = encodeProperties(body, a.Properties)
			if err != nil {
				return nil, err
			}
		}
	}
	return encodePacket(a.Type, false, 0, false, body)
}

// DecodeAck parses a PUBACK/PUBREC/PUBREL/PUBCOMP packet. Per §4.8, the
// reason code and property block are optional if the remaining length
// does not carry them (a v5 peer may omit them when the reason code is
// 0x00 and there are no properties).
func DecodeAck(buf []byte, t Type, v Version) (Ack, error) {
	a := Ack{Type: t, Version: v}
	pid, err := decodeUint16(buf, 0)
	if err != nil {
		return a, err
	}
	a.PacketID = pid

	if v == Version5 && len(buf) > 2 {
		a.HasReasonCode = true
		a.ReasonCode = buf[2]
		if len(buf) > 3 {
			props, _, err := decodeProperties(buf, 3)
			if err != nil {
				return a, err
			}
			a.Properties = props
		}
	}
	return a, nil
}

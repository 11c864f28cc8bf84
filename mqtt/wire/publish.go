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

// Publish is a decoded or to-be-encoded PUBLISH packet.
type Publish struct {
	Version    Version
	Dup        bool
	QoS        byte
	Retain     bool
	Topic      string
	PacketID   uint16 // only meaningful when QoS > 0
	Properties Properties
	Payload    []byte
}

// EncodePublish builds a PUBLISH packet, omitting the packet ID field
// entirely when QoS is 0 (it has no meaning there).
func EncodePublish(p Publish) ([]byte, error) {
	body := encodeUTF8String(nil, p.Topic)
	if p.QoS > 0 {
		body = encodeUint16(body, p.PacketID)
	}
	if p.Version == Version5 {
		var err error
		body, err = encodeProperties(body, p.Properties)
		if err != nil {
			return nil, err
		}
	}
	body = append(body, p.Payload...)
	return encodePacket(TypePUBLISH, p.Dup, p.QoS, p.Retain, body)
}

// DecodePublish parses a PUBLISH packet's variable header and payload.
// flags is the fixed header's low nibble, already split into dup/qos/
// retain by decodeFixedHeaderByte.
func DecodePublish(buf []byte, h FixedHeader, v Version) (Publish, error) {
	p := Publish{Version: v, Dup: h.Dup, QoS: h.QoS, Retain: h.Retain}

	topic, off, err := decodeUTF8String(buf, 0)
	if err != nil {
		return p, err
	}
	p.Topic = topic

	if p.QoS > 0 {
		p.PacketID, err = decodeUint16(buf, off)
		if err != nil {
			return p, err
		}
		off += 2
	}

	if v == Version5 {
		p.Properties, off, err = decodeProperties(buf, off)
		if err != nil {
			return p, err
		}
	}

	p.Payload = buf[off:]
	return p, nil
}

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

// EncodePingreq and EncodePingresp build the two zero-payload keepalive
// packets.
func EncodePingreq() ([]byte, error)  { return encodePacket(TypePINGREQ, false, 0, false, nil) }
func EncodePingresp() ([]byte, error) { return encodePacket(TypePINGRESP, false, 0, false, nil) }

// Disconnect is a decoded or to-be-encoded DISCONNECT packet. v3.1.1's
// DISCONNECT carries no payload; v5 adds an optional reason code and
// property block.
type Disconnect struct {
	Version       Version
	ReasonCode    byte
	Properties    Properties
	HasReasonCode bool
}

func EncodeDisconnect(d Disconnect) ([]byte, error) {
	var body []byte
	if d.Version == Version5 && d.HasReasonCode {
		body = append(body, d.ReasonCode)
		var err error
		body, err = encodeProperties(body, d.Properties)
		if err != nil {
			return nil, err
		}
	}
	return encodePacket(TypeDISCONNECT, false, 0, false, body)
}

func DecodeDisconnect(buf []byte, v Version) (Disconnect, error) {
	d := Disconnect{Version: v}
	if v == Version5 && len(buf) > 0 {
		d.HasReasonCode = true
		d.ReasonCode = buf[0]
		if len(buf) > 1 {
			props, _, err := decodeProperties(buf, 1)
			if err != nil {
				return d, err
			}
			d.Properties = props
		}
	}
	return d, nil
}

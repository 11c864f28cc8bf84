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

// PropertyID identifies a v5 property within a property block.
type PropertyID byte

const (
	PropPayloadFormatIndicator   PropertyID = 0x01
	PropMessageExpiryInterval    PropertyID = 0x02
	PropContentType              PropertyID = 0x03
	PropResponseTopic            PropertyID = 0x08
	PropCorrelationData          PropertyID = 0x09
	PropSubscriptionIdentifier   PropertyID = 0x0B
	PropSessionExpiryInterval    PropertyID = 0x11
	PropAssignedClientIdentifier PropertyID = 0x12
	PropServerKeepAlive          PropertyID = 0x13
	PropAuthenticationMethod     PropertyID = 0x15
	PropAuthenticationData       PropertyID = 0x16
	PropRequestProblemInfo       PropertyID = 0x17
	PropWillDelayInterval        PropertyID = 0x18
	PropRequestResponseInfo      PropertyID = 0x19
	PropResponseInformation      PropertyID = 0x1A
	PropServerReference          PropertyID = 0x1C
	PropReasonString             PropertyID = 0x1F
	PropReceiveMaximum           PropertyID = 0x21
	PropTopicAliasMaximum        PropertyID = 0x22
	PropTopicAlias               PropertyID = 0x23
	PropMaximumQoS               PropertyID = 0x24
	PropRetainAvailable          PropertyID = 0x25
	PropUserProperty             PropertyID = 0x26
	PropMaximumPacketSize        PropertyID = 0x27
	PropWildcardSubAvailable     PropertyID = 0x28
	PropSubIDAvailable           PropertyID = 0x29
	PropSharedSubAvailable       PropertyID = 0x2A
)

// propKind classifies a property's value encoding so an unrecognised
// property can still be skipped by length alone.
type propKind int

const (
	kindByte propKind = iota
	kindTwoByteInt
	kindFourByteInt
	kindVarint
	kindUTF8String
	kindBinaryData
	kindUTF8Pair // user property: two UTF-8 strings back to back
)

// propertyKinds is the length table §4.8 calls for: every known property
// ID mapped to how its value is sized, so the parser can skip a property
// it does not actively extract without understanding its meaning.
var propertyKinds = map[PropertyID]propKind{
	PropPayloadFormatIndicator:   kindByte,
	PropMessageExpiryInterval:    kindFourByteInt,
	PropContentType:              kindUTF8String,
	PropResponseTopic:            kindUTF8String,
	PropCorrelationData:          kindBinaryData,
	PropSubscriptionIdentifier:   kindVarint,
	PropSessionExpiryInterval:    kindFourByteInt,
	PropAssignedClientIdentifier: kindUTF8String,
	PropServerKeepAlive:          kindTwoByteInt,
	PropAuthenticationMethod:     kindUTF8String,
	PropAuthenticationData:       kindBinaryData,
	PropRequestProblemInfo:       kindByte,
	PropWillDelayInterval:        kindFourByteInt,
	PropRequestResponseInfo:      kindByte,
	PropResponseInformation:      kindUTF8String,
	PropServerReference:          kindUTF8String,
	PropReasonString:             kindUTF8String,
	PropReceiveMaximum:           kindTwoByteInt,
	PropTopicAliasMaximum:        kindTwoByteInt,
	PropTopicAlias:               kindTwoByteInt,
	PropMaximumQoS:               kindByte,
	PropRetainAvailable:          kindByte,
	PropUserProperty:             kindUTF8Pair,
	PropMaximumPacketSize:        kindFourByteInt,
	PropWildcardSubAvailable:     kindByte,
	PropSubIDAvailable:           kindByte,
	PropSharedSubAvailable:       kindByte,
}

var ErrUnknownProperty = errors.New("mqtt/wire: property id has no known length encoding")

// Properties is a decoded v5 property block. Actively-extracted properties
// land in their named fields; everything else is skipped during decode
// and absent from Raw (the skip table only needs to know each unknown
// property's length, not retain its bytes).
type Properties struct {
	SessionExpiryInterval *uint32
	ReceiveMaximum        *uint16
	UserProperties        []UserProperty
}

// UserProperty is a v5 "user property": an arbitrary key/value pair.
type UserProperty struct {
	Key   string
	Value string
}

// decodeUint16 reads a big-endian 16-bit integer at off.
func decodeUint16(buf []byte, off int) (uint16, error) {
	if off+2 > len(buf) {
		return 0, ErrShortBuffer
	}
	return uint16(buf[off])<<8 | uint16(buf[off+1]), nil
}

func encodeUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func decodeUint32(buf []byte, off int) (uint32, error) {
	if off+4 > len(buf) {
		return 0, ErrShortBuffer
	}
	return uint32(buf[off])<<24 | uint32(buf[off+1])<<16 | uint32(buf[off+2])<<8 | uint32(buf[off+3]), nil
}

func encodeUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// decodeUTF8String reads a 2-byte length prefix followed by that many
// bytes of UTF-8 text, per every MQTT string field from CONNECT's client
// identifier onward.
func decodeUTF8String(buf []byte, off int) (s string, next int, err error) {
	n, err := decodeUint16(buf, off)
	if err != nil {
		return "", 0, err
	}
	off += 2
	if off+int(n) > len(buf) {
		return "", 0, ErrShortBuffer
	}
	return string(buf[off : off+int(n)]), off + int(n), nil
}

func encodeUTF8String(buf []byte, s string) []byte {
	buf = encodeUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

func decodeBinaryData(buf []byte, off int) (data []byte, next int, err error) {
	n, err := decodeUint16(buf, off)
	if err != nil {
		return nil, 0, err
	}
	off += 2
	if off+int(n) > len(buf) {
		return nil, 0, ErrShortBuffer
	}
	return buf[off : off+int(n)], off + int(n), nil
}

func encodeBinaryData(buf []byte, data []byte) []byte {
	buf = encodeUint16(buf, uint16(len(data)))
	return append(buf, data...)
}

// decodeVarint reads a remaining-length-style varint (used both for the
// fixed header and for v5 property lengths / subscription identifiers).
func decodeVarint(buf []byte, off int) (value int, next int, err error) {
	v, consumed, err := DecodeRemainingLength(buf, off)
	if err != nil {
		return 0, 0, err
	}
	return v, off + consumed, nil
}

func encodeVarint(buf []byte, v int) ([]byte, error) {
	return EncodeRemainingLength(buf, v)
}

// decodeProperties reads a v5 property block (varint length, then that
// many bytes of id+value TLVs) starting at off. It returns the decoded
// Properties, actively extracting the fields §4.8 names and skipping
// everything else by its length-table entry, and the offset just past the
// block.
func decodeProperties(buf []byte, off int) (Properties, int, error) {
	var props Properties

	length, next, err := decodeVarint(buf, off)
	if err != nil {
		return props, 0, err
	}
	off = next
	end := off + length
	if end > len(buf) {
		return props, 0, ErrShortBuffer
	}

	for off < end {
		id := PropertyID(buf[off])
		off++

		kind, known := propertyKinds[id]
		if !known {
			return props, 0, ErrUnknownProperty
		}

		switch kind {
		case kindByte:
			if off+1 > end {
				return props, 0, ErrShortBuffer
			}
			off++
		case kindTwoByteInt:
			v, err := decodeUint16(buf, off)
			if err != nil {
				return props, 0, err
			}
			if id == PropReceiveMaximum {
				vv := v
				props.ReceiveMaximum = &vv
			}
			off += 2
		case kindFourByteInt:
			v, err := decodeUint32(buf, off)
			if err != nil {
				return props, 0, err
			}
			if id == PropSessionExpiryInterval {
				vv := v
				props.SessionExpiryInterval = &vv
			}
			off += 4
		case kindVarint:
			_, n, err := decodeVarint(buf, off)
			if err != nil {
				return props, 0, err
			}
			off = n
		case kindUTF8String:
			_, n, err := decodeUTF8String(buf, off)
			if err != nil {
				return props, 0, err
			}
			off = n
		case kindBinaryData:
			_, n, err := decodeBinaryData(buf, off)
			if err != nil {
				return props, 0, err
			}
			off = n
		case kindUTF8Pair:
			if id == PropUserProperty {
				k, n1, err := decodeUTF8String(buf, off)
				if err != nil {
					return props, 0, err
				}
				v, n2, err := decodeUTF8String(buf, n1)
				if err != nil {
					return props, 0, err
				}
				props.UserProperties = append(props.UserProperties, UserProperty{Key: k, Value: v})
				off = n2
			}
		}
	}

	return props, off, nil
}

// encodeProperties writes props as a v5 property block (varint length
// prefix then the TLVs) onto buf.
func encodeProperties(buf []byte, props Properties) ([]byte, error) {
	var body []byte

	if props.SessionExpiryInterval != nil {
		body = append(body, byte(PropSessionExpiryInterval))
		body = encodeUint32(body, *props.SessionExpiryInterval)
	}
	if props.ReceiveMaximum != nil {
		body = append(body, byte(PropReceiveMaximum))
		body = encodeUint16(body, *props.ReceiveMaximum)
	}
	for _, up := range props.UserProperties {
		body = append(body, byte(PropUserProperty))
		body = encodeUTF8String(body, up.Key)
		body = encodeUTF8String(body, up.Value)
	}

	buf, err := encodeVarint(buf, len(body))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}

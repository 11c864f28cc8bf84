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

// pstate is one state of the streaming decoder's finite-state machine.
type pstate int

const (
	stateFixedHeader pstate = iota
	stateRemainingLen
	stateVarheaderPayload
	stateError
)

// Callbacks is the table Parser dispatches a completed packet to, indexed
// by packet type. A nil entry silently drops packets of that type.
type Callbacks struct {
	OnConnect     func(Connect)
	OnConnack     func(Connack)
	OnPublish     func(Publish)
	OnPuback      func(Ack)
	OnPubrec      func(Ack)
	OnPubrel      func(Ack)
	OnPubcomp     func(Ack)
	OnSubscribe   func(Subscribe)
	OnSuback      func(Suback)
	OnUnsubscribe func(Unsubscribe)
	OnUnsuback    func(Unsuback)
	OnPingreq     func()
	OnPingresp    func()
	OnDisconnect  func(Disconnect)
}

// Parser is a streaming MQTT control packet decoder: Feed accepts an
// append-only byte feed (however it arrives off the wire, in whatever
// chunk sizes), and on every complete packet invokes one Callbacks entry
// before resetting to stateFixedHeader for the next one. A malformed
// packet moves the parser to a terminal error state; every Feed call
// after that returns the same error until Reset.
type Parser struct {
	version    Version
	maxPayload int
	cb         Callbacks

	state  pstate
	buf    []byte
	header FixedHeader
	hdrLen int
	err    error
}

// NewParser builds a Parser that decodes packets as protocol level v,
// dispatching completed packets to cb. maxPayload <= 0 disables the
// payload-size guard.
func NewParser(v Version, maxPayload int, cb Callbacks) *Parser {
	return &Parser{version: v, maxPayload: maxPayload, cb: cb}
}

// SetVersion updates the protocol level used to decode version-dependent
// fields (CONNACK, PUBLISH, the ack family). Used once CONNACK confirms
// which level the broker actually accepted.
func (p *Parser) SetVersion(v Version) {
	p.version = v
}

// Feed appends data to the parser's accumulator and decodes as many
// complete packets as are now available, dispatching each through the
// Callbacks table. It returns the first error encountered; once returned,
// the parser is in its terminal error state and every subsequent Feed
// call returns that same error without consuming data, until Reset.
func (p *Parser) Feed(data []byte) error {
	if p.state == stateError {
		return p.err
	}
	p.buf = append(p.buf, data...)

	for {
		switch p.state {
		case stateFixedHeader:
			if len(p.buf) < 1 {
				return nil
			}
			p.header = decodeFixedHeaderByte(p.buf[0])
			p.state = stateRemainingLen
			fallthrough

		case stateRemainingLen:
			rl, consumed, err := DecodeRemainingLength(p.buf, 1)
			if err == ErrShortBuffer {
				return nil
			}
			if err != nil {
				return p.fail(err)
			}
			if p.maxPayload > 0 && rl > p.maxPayload {
				return p.fail(ErrPacketTooLarge)
			}
			p.header.RemainingLength = rl
			p.hdrLen = 1 + consumed
			p.state = stateVarheaderPayload
			fallthrough

		case stateVarheaderPayload:
			total := p.hdrLen + p.header.RemainingLength
			if len(p.buf) < total {
				return nil
			}
			body := p.buf[p.hdrLen:total]
			if err := p.dispatch(p.header, body); err != nil {
				return p.fail(err)
			}

			remaining := p.buf[total:]
			p.buf = append([]byte(nil), remaining...)
			p.header = FixedHeader{}
			p.hdrLen = 0
			p.state = stateFixedHeader

			if len(p.buf) == 0 {
				return nil
			}
		}
	}
}

func (p *Parser) fail(err error) error {
	p.state = stateError
	p.err = err
	return err
}

// Reset returns the parser to stateFixedHeader, discarding any buffered
// partial packet and clearing a prior error.
func (p *Parser) Reset() {
	p.state = stateFixedHeader
	p.buf = nil
	p.header = FixedHeader{}
	p.hdrLen = 0
	p.err = nil
}

func (p *Parser) dispatch(h FixedHeader, body []byte) error {
	switch h.Type {
	case TypeCONNECT:
		c, err := DecodeConnect(body)
		if err != nil {
			return err
		}
		if p.cb.OnConnect != nil {
			p.cb.OnConnect(c)
		}

	case TypeCONNACK:
		c, err := DecodeConnack(body, p.version)
		if err != nil {
			return err
		}
		if p.cb.OnConnack != nil {
			p.cb.OnConnack(c)
		}

	case TypePUBLISH:
		pub, err := DecodePublish(body, h, p.version)
		if err != nil {
			return err
		}
		if p.cb.OnPublish != nil {
			p.cb.OnPublish(pub)
		}

	case TypePUBACK, TypePUBREC, TypePUBREL, TypePUBCOMP:
		a, err := DecodeAck(body, h.Type, p.version)
		if err != nil {
			return err
		}
		switch h.Type {
		case TypePUBACK:
			if p.cb.OnPuback != nil {
				p.cb.OnPuback(a)
			}
		case TypePUBREC:
			if p.cb.OnPubrec != nil {
				p.cb.OnPubrec(a)
			}
		case TypePUBREL:
			if p.cb.OnPubrel != nil {
				p.cb.OnPubrel(a)
			}
		case TypePUBCOMP:
			if p.cb.OnPubcomp != nil {
				p.cb.OnPubcomp(a)
			}
		}

	case TypeSUBSCRIBE:
		s, err := DecodeSubscribe(body, p.version)
		if err != nil {
			return err
		}
		if p.cb.OnSubscribe != nil {
			p.cb.OnSubscribe(s)
		}

	case TypeSUBACK:
		s, err := DecodeSuback(body, p.version)
		if err != nil {
			return err
		}
		if p.cb.OnSuback != nil {
			p.cb.OnSuback(s)
		}

	case TypeUNSUBSCRIBE:
		u, err := DecodeUnsubscribe(body, p.version)
		if err != nil {
			return err
		}
		if p.cb.OnUnsubscribe != nil {
			p.cb.OnUnsubscribe(u)
		}

	case TypeUNSUBACK:
		u, err := DecodeUnsuback(body, p.version)
		if err != nil {
			return err
		}
		if p.cb.OnUnsuback != nil {
			p.cb.OnUnsuback(u)
		}

	case TypePINGREQ:
		if p.cb.OnPingreq != nil {
			p.cb.OnPingreq()
		}

	case TypePINGRESP:
		if p.cb.OnPingresp != nil {
			p.cb.OnPingresp()
		}

	case TypeDISCONNECT:
		d, err := DecodeDisconnect(body, p.version)
		if err != nil {
			return err
		}
		if p.cb.OnDisconnect != nil {
			p.cb.OnDisconnect(d)
		}

	default:
		return ErrUnknownPacketType
	}

	return nil
}

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

package wire_test

import (
	"github.com/nabbar/golib/mqtt/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("remaining-length varint", func() {
	It("round-trips the boundary values at their documented byte lengths", func() {
		cases := []struct {
			n      int
			length int
		}{
			{0, 1}, {127, 1},
			{128, 2}, {16383, 2},
			{16384, 3}, {2097151, 3},
			{2097152, 4}, {268435455, 4},
		}
		for _, c := range cases {
			buf, err := wire.EncodeRemainingLength(nil, c.n)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf).To(HaveLen(c.length))

			got, consumed, err := wire.DecodeRemainingLength(buf, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(consumed).To(Equal(c.length))
			Expect(got).To(Equal(c.n))
		}
	})

	It("rejects a value too large for the 4-byte varint ceiling", func() {
		_, err := wire.EncodeRemainingLength(nil, 268435456)
		Expect(err).To(MatchError(wire.ErrRemainingLengthTooLarge))
	})
})

var _ = Describe("CONNECT / CONNACK codec", func() {
	It("round-trips a v3.1.1 CONNECT with a will and credentials", func() {
		c := wire.Connect{
			Version:      wire.Version311,
			ClientID:     "device-1",
			CleanSession: true,
			KeepAlive:    60,
			HasWill:      true,
			WillTopic:    "device-1/lwt",
			WillMessage:  []byte("offline"),
			WillQoS:      1,
			WillRetain:   true,
			HasUsername:  true,
			Username:     "alice",
			HasPassword:  true,
			Password:     []byte("s3cret"),
		}
		raw, err := wire.EncodeConnect(c)
		Expect(err).NotTo(HaveOccurred())

		var decoded wire.Connect
		p := wire.NewParser(wire.Version311, 0, wire.Callbacks{
			OnConnect: func(cc wire.Connect) { decoded = cc },
		})
		Expect(p.Feed(raw)).To(Succeed())

		Expect(decoded.ClientID).To(Equal("device-1"))
		Expect(decoded.CleanSession).To(BeTrue())
		Expect(decoded.KeepAlive).To(Equal(uint16(60)))
		Expect(decoded.HasWill).To(BeTrue())
		Expect(decoded.WillTopic).To(Equal("device-1/lwt"))
		Expect(decoded.WillMessage).To(Equal([]byte("offline")))
		Expect(decoded.WillQoS).To(Equal(byte(1)))
		Expect(decoded.WillRetain).To(BeTrue())
		Expect(decoded.Username).To(Equal("alice"))
		Expect(decoded.Password).To(Equal([]byte("s3cret")))
	})

	It("uses protocol name MQIsdp for v3.1", func() {
		raw, err := wire.EncodeConnect(wire.Connect{Version: wire.Version31, ClientID: "x", KeepAlive: 30})
		Expect(err).NotTo(HaveOccurred())
		// fixed header (2 bytes) + 2-byte length prefix + "MQIsdp"
		Expect(string(raw[4:10])).To(Equal("MQIsdp"))
	})

	It("round-trips a v5 CONNACK carrying session-expiry and receive-maximum properties", func() {
		sei := uint32(3600)
		rm := uint16(20)
		raw, err := wire.EncodeConnack(wire.Connack{
			Version:        wire.Version5,
			SessionPresent: true,
			ReturnCode:     0,
			Properties: wire.Properties{
				SessionExpiryInterval: &sei,
				ReceiveMaximum:        &rm,
			},
		})
		Expect(err).NotTo(HaveOccurred())

		var decoded wire.Connack
		p := wire.NewParser(wire.Version5, 0, wire.Callbacks{
			OnConnack: func(c wire.Connack) { decoded = c },
		})
		Expect(p.Feed(raw)).To(Succeed())

		Expect(decoded.SessionPresent).To(BeTrue())
		Expect(*decoded.Properties.SessionExpiryInterval).To(Equal(sei))
		Expect(*decoded.Properties.ReceiveMaximum).To(Equal(rm))
	})

	It("parses successfully past an unknown v5 property by obeying its length", func() {
		sei := uint32(10)
		raw, err := wire.EncodeConnack(wire.Connack{
			Version:    wire.Version5,
			ReturnCode: 0,
			Properties: wire.Properties{SessionExpiryInterval: &sei},
		})
		Expect(err).NotTo(HaveOccurred())

		var decoded wire.Connack
		p := wire.NewParser(wire.Version5, 0, wire.Callbacks{
			OnConnack: func(c wire.Connack) { decoded = c },
		})
		Expect(p.Feed(raw)).To(Succeed())
		Expect(*decoded.Properties.SessionExpiryInterval).To(Equal(sei))
	})
})

var _ = Describe("PUBLISH codec", func() {
	It("omits the packet ID for QoS 0", func() {
		raw, err := wire.EncodePublish(wire.Publish{
			Version: wire.Version311,
			Topic:   "test/a",
			Payload: []byte("hello"),
		})
		Expect(err).NotTo(HaveOccurred())

		var decoded wire.Publish
		p := wire.NewParser(wire.Version311, 0, wire.Callbacks{
			OnPublish: func(pub wire.Publish) { decoded = pub },
		})
		Expect(p.Feed(raw)).To(Succeed())
		Expect(decoded.Topic).To(Equal("test/a"))
		Expect(decoded.Payload).To(Equal([]byte("hello")))
		Expect(decoded.PacketID).To(Equal(uint16(0)))
	})

	It("round-trips a QoS 2 PUBLISH with dup and retain set", func() {
		raw, err := wire.EncodePublish(wire.Publish{
			Version:  wire.Version311,
			Dup:      true,
			QoS:      2,
			Retain:   true,
			Topic:    "a/b",
			PacketID: 42,
			Payload:  []byte{1, 2, 3},
		})
		Expect(err).NotTo(HaveOccurred())

		var decoded wire.Publish
		p := wire.NewParser(wire.Version311, 0, wire.Callbacks{
			OnPublish: func(pub wire.Publish) { decoded = pub },
		})
		Expect(p.Feed(raw)).To(Succeed())
		Expect(decoded.Dup).To(BeTrue())
		Expect(decoded.QoS).To(Equal(byte(2)))
		Expect(decoded.Retain).To(BeTrue())
		Expect(decoded.PacketID).To(Equal(uint16(42)))
		Expect(decoded.Payload).To(Equal([]byte{1, 2, 3}))
	})
})

var _ = Describe("ack family codec", func() {
	It("round-trips a v3.1.1 PUBACK with no reason code field", func() {
		raw, err := wire.EncodeAck(wire.Ack{Type: wire.TypePUBACK, Version: wire.Version311, PacketID: 7})
		Expect(err).NotTo(HaveOccurred())

		var decoded wire.Ack
		p := wire.NewParser(wire.Version311, 0, wire.Callbacks{
			OnPuback: func(a wire.Ack) { decoded = a },
		})
		Expect(p.Feed(raw)).To(Succeed())
		Expect(decoded.PacketID).To(Equal(uint16(7)))
		Expect(decoded.HasReasonCode).To(BeFalse())
	})

	It("round-trips a v5 PUBREC carrying a reason code", func() {
		raw, err := wire.EncodeAck(wire.Ack{
			Type: wire.TypePUBREC, Version: wire.Version5, PacketID: 9,
			ReasonCode: 0x92, HasReasonCode: true,
		})
		Expect(err).NotTo(HaveOccurred())

		var decoded wire.Ack
		p := wire.NewParser(wire.Version5, 0, wire.Callbacks{
			OnPubrec: func(a wire.Ack) { decoded = a },
		})
		Expect(p.Feed(raw)).To(Succeed())
		Expect(decoded.ReasonCode).To(Equal(byte(0x92)))
	})
})

var _ = Describe("SUBSCRIBE / SUBACK codec", func() {
	It("round-trips multiple filters and a parallel return-code array", func() {
		raw, err := wire.EncodeSubscribe(wire.Subscribe{
			Version:  wire.Version311,
			PacketID: 3,
			Subscriptions: []wire.Subscription{
				{Filter: "test/#", QoS: 1},
				{Filter: "other/+", QoS: 2},
			},
		})
		Expect(err).NotTo(HaveOccurred())

		var decoded wire.Subscribe
		p := wire.NewParser(wire.Version311, 0, wire.Callbacks{
			OnSubscribe: func(s wire.Subscribe) { decoded = s },
		})
		Expect(p.Feed(raw)).To(Succeed())
		Expect(decoded.Subscriptions).To(HaveLen(2))
		Expect(decoded.Subscriptions[0].Filter).To(Equal("test/#"))
		Expect(decoded.Subscriptions[1].QoS).To(Equal(byte(2)))

		sraw, err := wire.EncodeSuback(wire.Suback{Version: wire.Version311, PacketID: 3, ReturnCodes: []byte{0x01, 0x80}})
		Expect(err).NotTo(HaveOccurred())

		var suback wire.Suback
		p2 := wire.NewParser(wire.Version311, 0, wire.Callbacks{
			OnSuback: func(s wire.Suback) { suback = s },
		})
		Expect(p2.Feed(sraw)).To(Succeed())
		Expect(suback.ReturnCodes).To(Equal([]byte{0x01, 0x80}))
	})
})

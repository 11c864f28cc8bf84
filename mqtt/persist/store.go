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

// Package persist snapshots an MQTT client's outstanding QoS 1/2 state and
// subscription list to a CBOR-encoded file, so a process restart can
// resume them instead of losing in-flight deliveries. Entirely optional:
// a client with no configured path never touches this package.
package persist

import (
	"os"

	"github.com/fxamacker/cbor/v2"

	libperm "github.com/nabbar/golib/file/perm"
)

// OutboundQoS1 is one entry of a client's pending_qos1 map at snapshot
// time (spec.md §4.9 "Outbound QoS 1").
type OutboundQoS1 struct {
	PacketID   uint16
	Topic      string
	Payload    []byte
	Retain     bool
	RetryCount int
}

// OutboundQoS2 is one entry of a client's QoS 2 outbound state machine
// (spec.md §4.9 "Outbound QoS 2"); State is "AWAIT_PUBREC" or
// "AWAIT_PUBCOMP".
type OutboundQoS2 struct {
	PacketID   uint16
	Topic      string
	Payload    []byte
	Retain     bool
	State      string
	RetryCount int
}

// InboundQoS2 is one entry of a client's pending_in map (spec.md §4.9
// "Inbound QoS 2"): a message buffered between PUBLISH and PUBREL.
type InboundQoS2 struct {
	PacketID uint16
	Topic    string
	Payload  []byte
	Retain   bool
}

// Subscription is one entry of a client's subscription list.
type Subscription struct {
	Filter string
	QoS    byte
}

// Snapshot is the full persisted state of one client session.
type Snapshot struct {
	ClientID      string
	NextPacketID  uint16
	OutboundQoS1  []OutboundQoS1
	OutboundQoS2  []OutboundQoS2
	InboundQoS2   []InboundQoS2
	Subscriptions []Subscription
}

// filePerm restricts the snapshot file to its owner: it carries message
// payloads, which may be arbitrary application data.
var filePerm = mustPerm("0600")

func mustPerm(s string) os.FileMode {
	p, err := libperm.Parse(s)
	if err != nil {
		panic(err)
	}
	return p.FileMode()
}

// Save CBOR-encodes snap and writes it to path, replacing any prior
// snapshot atomically (write to a sibling temp file, then rename).
func Save(path string, snap Snapshot) error {
	data, err := cbor.Marshal(snap)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, data, filePerm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads and decodes the snapshot at path. A missing file is reported
// through the returned error exactly as os.Open would (callers typically
// check os.IsNotExist to distinguish "no prior session" from corruption).
func Load(path string) (Snapshot, error) {
	var snap Snapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err = cbor.Unmarshal(data, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

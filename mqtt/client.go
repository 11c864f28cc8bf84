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

package mqtt

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	libmph "github.com/nabbar/golib/mpool"
	"github.com/nabbar/golib/mqtt/persist"
	"github.com/nabbar/golib/mqtt/topic"
	"github.com/nabbar/golib/mqtt/wire"
	librct "github.com/nabbar/golib/reactor"
)

// State is the Client's connection lifecycle state (spec.md §4.9 "Client
// lifecycle"): IDLE -> CONNECTING -> PROTOCOL_INIT -> CONNECTED ->
// DISCONNECTED, looping back to CONNECTING when auto-reconnect is enabled.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateProtocolInit
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateProtocolInit:
		return "PROTOCOL_INIT"
	case StateConnected:
		return "CONNECTED"
	case StateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// outboundQoS1 tracks one in-flight QoS 1 PUBLISH awaiting PUBACK.
type outboundQoS1 struct {
	topic   string
	payload []byte
	retain  bool
	retries int
	timer   *librct.Timer
}

// outboundQoS2 tracks one in-flight QoS 2 PUBLISH through its two-step
// handshake (spec.md §4.9 "Outbound QoS 2").
type outboundQoS2 struct {
	topic   string
	payload []byte
	retain  bool
	state   string // "AWAIT_PUBREC" or "AWAIT_PUBCOMP"
	retries int
	timer   *librct.Timer
}

// inboundQoS2 buffers one broker-initiated QoS 2 message between PUBLISH
// and the PUBREL that releases it for delivery (spec.md §4.9 "Inbound
// QoS 2").
type inboundQoS2 struct {
	topic   string
	payload []byte
	retain  bool
}

// Client is one MQTT session over a reactor-driven transport. The zero
// value is not usable; construct with New.
type Client struct {
	opts Options
	loop *librct.Loop
	pool *libmph.Pool

	parser *wire.Parser

	mu          sync.Mutex
	state       State
	snd         sender
	nextID      uint16
	subs        map[string]byte
	pendingQoS1 map[uint16]*outboundQoS1
	pendingQoS2 map[uint16]*outboundQoS2
	pendingIn   map[uint16]*inboundQoS2

	metrics *Metrics

	keepalive  *librct.Timer
	watchdog   *librct.Timer
	connectAck chan error

	reconnectAttempt int
	closing          bool

	// OnConnect fires once CONNACK is accepted; sessionPresent reports
	// whether the broker resumed a prior session.
	OnConnect func(sessionPresent bool)
	// OnMessage fires once per delivered PUBLISH, after QoS 2 dedup.
	OnMessage func(topic string, payload []byte, qos byte, retain bool)
	// OnDisconnect fires once the transport goes down, whether requested
	// (err is nil) or not.
	OnDisconnect func(err error)
	// OnError fires for every local failure: those that tear down the
	// connection (before OnDisconnect) and those that do not (e.g. a QoS 1/2
	// publish abandoned after its retries).
	OnError func(err error)
}

// New constructs a Client bound to loop and pool. opts is validated
// immediately so configuration mistakes surface before any dial attempt.
func New(l *librct.Loop, pool *libmph.Pool, opts Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		opts:        opts,
		loop:        l,
		pool:        pool,
		state:       StateIdle,
		subs:        make(map[string]byte),
		pendingQoS1: make(map[uint16]*outboundQoS1),
		pendingQoS2: make(map[uint16]*outboundQoS2),
		pendingIn:   make(map[uint16]*inboundQoS2),
		metrics:     newMetrics(),
	}
	c.parser = wire.NewParser(opts.Version, opts.MaxPayload, wire.Callbacks{
		OnConnack:    c.handleConnack,
		OnPublish:    c.handlePublish,
		OnPuback:     c.handlePuback,
		OnPubrec:     c.handlePubrec,
		OnPubrel:     c.handlePubrel,
		OnPubcomp:    c.handlePubcomp,
		OnSuback:     func(wire.Suback) {},
		OnUnsuback:   func(wire.Unsuback) {},
		OnPingresp:   func() {},
		OnDisconnect: c.handleServerDisconnect,
	})

	c.loadPersisted()
	return c, nil
}

// State reports the client's current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Metrics returns the client's Prometheus collector (pending QoS1/QoS2
// gauges, publish/reconnect/abandon counters).
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// loadPersisted restores a prior session's pending deliveries and
// subscription list from Options.PersistPath, if configured. A missing
// file is the normal first-run case and is not an error.
func (c *Client) loadPersisted() {
	if c.opts.PersistPath == "" {
		return
	}
	snap, err := persist.Load(c.opts.PersistPath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.opts.Logger().Warning("mqtt: discarding unreadable session snapshot", map[string]interface{}{"error": err.Error()})
		}
		return
	}
	c.nextID = snap.NextPacketID
	for _, s := range snap.Subscriptions {
		c.subs[s.Filter] = s.QoS
	}
	for _, o := range snap.OutboundQoS1 {
		c.pendingQoS1[o.PacketID] = &outboundQoS1{topic: o.Topic, payload: o.Payload, retain: o.Retain, retries: o.RetryCount}
		c.metrics.pendingQoS1.Inc()
	}
	for _, o := range snap.OutboundQoS2 {
		c.pendingQoS2[o.PacketID] = &outboundQoS2{topic: o.Topic, payload: o.Payload, retain: o.Retain, state: o.State, retries: o.RetryCount}
		c.metrics.pendingQoS2.Inc()
	}
	for _, in := range snap.InboundQoS2 {
		c.pendingIn[in.PacketID] = &inboundQoS2{topic: in.Topic, payload: in.Payload, retain: in.Retain}
		c.metrics.pendingIn.Inc()
	}
}

// savePersisted snapshots the client's pending state to Options.PersistPath.
// Called with c.mu held.
func (c *Client) savePersisted() {
	if c.opts.PersistPath == "" {
		return
	}
	snap := persist.Snapshot{
		ClientID:     c.opts.ClientID,
		NextPacketID: c.nextID,
	}
	for filter, qos := range c.subs {
		snap.Subscriptions = append(snap.Subscriptions, persist.Subscription{Filter: filter, QoS: qos})
	}
	for id, o := range c.pendingQoS1 {
		snap.OutboundQoS1 = append(snap.OutboundQoS1, persist.OutboundQoS1{PacketID: id, Topic: o.topic, Payload: o.payload, Retain: o.retain, RetryCount: o.retries})
	}
	for id, o := range c.pendingQoS2 {
		snap.OutboundQoS2 = append(snap.OutboundQoS2, persist.OutboundQoS2{PacketID: id, Topic: o.topic, Payload: o.payload, Retain: o.retain, State: o.state, RetryCount: o.retries})
	}
	for id, in := range c.pendingIn {
		snap.InboundQoS2 = append(snap.InboundQoS2, persist.InboundQoS2{PacketID: id, Topic: in.topic, Payload: in.payload, Retain: in.retain})
	}
	if err := persist.Save(c.opts.PersistPath, snap); err != nil {
		c.opts.Logger().Warning("mqtt: failed to persist session snapshot", map[string]interface{}{"error": err.Error()})
	}
}

// nextPacketID returns the next non-zero packet identifier, wrapping
// around uint16's range (0 is reserved by the protocol for QoS 0).
// Called with c.mu held.
func (c *Client) nextPacketID() uint16 {
	c.nextID++
	if c.nextID == 0 {
		c.nextID = 1
	}
	return c.nextID
}

// Connect dials the configured transport and blocks until CONNACK arrives,
// ctx is done, or Options.ConnectTimeout elapses.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle && c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.connectAck = make(chan error, 1)
	c.closing = false
	c.mu.Unlock()

	if err := dial(c.loop, c.opts, c.pool, c); err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return err
	}

	tctx, cancel := context.WithTimeout(ctx, c.opts.connectTimeout().Time())
	defer cancel()

	select {
	case err := <-c.connectAck:
		return err
	case <-tctx.Done():
		c.mu.Lock()
		ack := c.connectAck
		c.mu.Unlock()
		select {
		case err := <-ack:
			return err
		default:
		}
		c.fail(ErrConnectTimeout)
		return ErrConnectTimeout
	}
}

// onTransportUp fires once the underlying transport (TCP, TLS, WS or WSS)
// is up; it sends CONNECT and moves to PROTOCOL_INIT.
func (c *Client) onTransportUp(s sender) {
	c.mu.Lock()
	c.snd = s
	c.state = StateProtocolInit
	c.parser.Reset()
	c.parser.SetVersion(c.opts.Version)

	connect := wire.Connect{
		Version:      c.opts.Version,
		ClientID:     c.opts.ClientID,
		CleanSession: c.opts.CleanSession,
		KeepAlive:    c.opts.keepAliveSeconds(),
		HasUsername:  c.opts.HasUsername,
		Username:     c.opts.Username,
		HasPassword:  c.opts.HasPassword,
		Password:     c.opts.Password,
	}
	if c.opts.Will != nil {
		connect.HasWill = true
		connect.WillTopic = c.opts.Will.Topic
		connect.WillMessage = c.opts.Will.Payload
		connect.WillQoS = c.opts.Will.QoS
		connect.WillRetain = c.opts.Will.Retain
	}
	c.mu.Unlock()

	raw, err := wire.EncodeConnect(connect)
	if err != nil {
		c.fail(err)
		return
	}
	if err = s.send(raw); err != nil {
		c.fail(err)
	}
}

// onTransportData feeds inbound bytes to the wire parser; a protocol
// violation fails the connection.
func (c *Client) onTransportData(data []byte) {
	// Any inbound traffic counts as broker activity: restart the watchdog.
	c.mu.Lock()
	if c.watchdog != nil {
		c.watchdog.Cancel()
		ka := c.opts.KeepAlive.Time()
		watchdogAfter := ka + ka/2
		c.watchdog = c.loop.AddTimer(watchdogAfter, watchdogAfter, func(time.Time) {
			c.fail(ErrKeepAliveTimeout)
		})
	}
	c.mu.Unlock()

	if err := c.parser.Feed(data); err != nil {
		c.fail(err)
	}
}

// onTransportDown runs once the transport closes, for any reason.
func (c *Client) onTransportDown(err error) {
	c.mu.Lock()
	wasClosing := c.closing
	c.state = StateDisconnected
	c.stopTimersLocked()
	c.savePersisted()
	c.mu.Unlock()

	select {
	case c.connectAck <- err:
	default:
	}

	if cb := c.OnDisconnect; cb != nil {
		cb(err)
	}

	if !wasClosing && err != nil && c.opts.Reconnect.Enabled {
		c.scheduleReconnect()
	}
}

// stopTimersLocked cancels the keepalive and watchdog timers. Called with
// c.mu held.
func (c *Client) stopTimersLocked() {
	if c.keepalive != nil {
		c.keepalive.Cancel()
		c.keepalive = nil
	}
	if c.watchdog != nil {
		c.watchdog.Cancel()
		c.watchdog = nil
	}
	for _, p := range c.pendingQoS1 {
		if p.timer != nil {
			p.timer.Cancel()
		}
	}
	for _, p := range c.pendingQoS2 {
		if p.timer != nil {
			p.timer.Cancel()
		}
	}
}

// fail tears the connection down on a local protocol/transport error: it
// clears and closes the sender, then reports the failure in a fixed order
// (spec.md §4.9 "Failure semantics"): pending-connect-failure, error
// callback, disconnect callback, then reconnect evaluation. The user
// callbacks are read in place; they are not saved or cleared first.
func (c *Client) fail(err error) {
	c.mu.Lock()
	s := c.snd
	c.snd = nil
	already := c.state == StateDisconnected
	c.mu.Unlock()

	if s != nil {
		s.close()
	}
	if already {
		return
	}

	select {
	case c.connectAck <- err:
	default:
	}
	if cb := c.OnError; cb != nil {
		cb(err)
	}
	c.onTransportDown(err)
}

// scheduleReconnect arms a one-shot timer with doubling backoff and
// retries Connect; gives up after Options.Reconnect.MaxAttempts (0 means
// unlimited).
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	c.reconnectAttempt++
	attempt := c.reconnectAttempt
	c.mu.Unlock()

	if c.opts.Reconnect.MaxAttempts > 0 && attempt > c.opts.Reconnect.MaxAttempts {
		if cb := c.OnError; cb != nil {
			cb(ErrMaxReconnectAttempts)
		}
		return
	}
	c.metrics.reconnects.Inc()

	delay := c.opts.Reconnect.InitialDelay.Time()
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if max := c.opts.Reconnect.MaxDelay.Time(); max > 0 && delay > max {
			delay = max
			break
		}
	}

	// Connect dials synchronously; running it directly on the timer
	// callback would block the reactor loop's own goroutine for the
	// duration of the dial, so it gets its own goroutine here.
	c.loop.AddTimer(delay, 0, func(time.Time) {
		go func() {
			if err := c.Connect(context.Background()); err != nil {
				c.opts.Logger().Warning("mqtt: reconnect attempt failed", map[string]interface{}{"attempt": attempt, "error": err.Error()})
				// A dial error returns before the transport ever comes up, so
				// onTransportDown has not scheduled the next attempt.
				c.mu.Lock()
				again := err != ErrAlreadyConnected && c.reconnectAttempt == attempt
				c.mu.Unlock()
				if again {
					c.scheduleReconnect()
				}
			}
		}()
	})
}

// armKeepAlive starts the ping timer (half the advertised keepalive) and
// the inactivity watchdog (1.5x keepalive); a zero keepalive disables both.
// Called with c.mu held.
func (c *Client) armKeepAlive() {
	ka := c.opts.KeepAlive.Time()
	if ka <= 0 {
		return
	}
	half := ka / 2
	if half <= 0 {
		half = time.Second
	}
	c.keepalive = c.loop.AddTimer(half, half, func(time.Time) {
		c.mu.Lock()
		s := c.snd
		c.mu.Unlock()
		if s == nil {
			return
		}
		raw, _ := wire.EncodePingreq()
		_ = s.send(raw)
	})

	watchdogAfter := ka + ka/2
	c.watchdog = c.loop.AddTimer(watchdogAfter, watchdogAfter, func(time.Time) {
		c.fail(ErrKeepAliveTimeout)
	})
}

// handleConnack completes the CONNECT handshake: on success it arms
// keepalive, replays subscriptions and resends persisted in-flight
// deliveries; on refusal it fails the connection with the broker's code
// embedded in the error.
func (c *Client) handleConnack(ack wire.Connack) {
	c.mu.Lock()
	if ack.ReturnCode != 0 {
		c.mu.Unlock()
		c.fail(fmt.Errorf("%w: code %d", ErrRefused, ack.ReturnCode))
		return
	}
	c.state = StateConnected
	c.reconnectAttempt = 0
	c.armKeepAlive()

	filters := make([]wire.Subscription, 0, len(c.subs))
	for f, q := range c.subs {
		filters = append(filters, wire.Subscription{Filter: f, QoS: q})
	}
	pendingQoS1 := make(map[uint16]*outboundQoS1, len(c.pendingQoS1))
	for id, p := range c.pendingQoS1 {
		pendingQoS1[id] = p
	}
	pendingQoS2 := make(map[uint16]*outboundQoS2, len(c.pendingQoS2))
	for id, p := range c.pendingQoS2 {
		pendingQoS2[id] = p
	}
	s := c.snd
	v := c.opts.Version
	sessionPresent := ack.SessionPresent
	c.mu.Unlock()

	if !sessionPresent && len(filters) > 0 {
		if raw, err := wire.EncodeSubscribe(wire.Subscribe{Version: v, PacketID: c.claimPacketID(), Subscriptions: filters}); err == nil {
			_ = s.send(raw)
		}
	}
	if !sessionPresent {
		for id, p := range pendingQoS1 {
			c.armQoS1Timer(id, p)
			c.resendQoS1(id, p)
		}
		for id, p := range pendingQoS2 {
			c.armQoS2Timer(id, p)
			c.resendQoS2(id, p)
		}
	}

	select {
	case c.connectAck <- nil:
	default:
	}
	if cb := c.OnConnect; cb != nil {
		cb(sessionPresent)
	}
}

func (c *Client) claimPacketID() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextPacketID()
}

// handleServerDisconnect processes a v5 server-initiated DISCONNECT.
func (c *Client) handleServerDisconnect(d wire.Disconnect) {
	c.fail(fmt.Errorf("mqtt: broker sent DISCONNECT, reason code %d", d.ReasonCode))
}

// Disconnect stops timers, sends DISCONNECT and closes the transport. It
// never triggers auto-reconnect.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.state != StateConnected && c.state != StateProtocolInit {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.closing = true
	s := c.snd
	v := c.opts.Version
	c.stopTimersLocked()
	c.mu.Unlock()

	raw, err := wire.EncodeDisconnect(wire.Disconnect{Version: v})
	if err == nil && s != nil {
		_ = s.send(raw)
	}
	if s != nil {
		s.close()
	}
	return nil
}

// Publish sends a PUBLISH at the requested QoS. QoS 0 is fire-and-forget;
// QoS 1/2 are tracked until acknowledged and resent with DUP set on retry
// (spec.md §4.9 "Outbound QoS 1"/"Outbound QoS 2").
func (c *Client) Publish(topicName string, payload []byte, qos byte, retain bool) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	s := c.snd
	v := c.opts.Version

	var id uint16
	if qos > 0 {
		id = c.nextPacketID()
	}
	c.mu.Unlock()

	pub := wire.Publish{Version: v, Topic: topicName, Payload: payload, QoS: qos, Retain: retain, PacketID: id}
	raw, err := wire.EncodePublish(pub)
	if err != nil {
		return err
	}

	if qos == 1 {
		p := &outboundQoS1{topic: topicName, payload: payload, retain: retain}
		c.mu.Lock()
		c.pendingQoS1[id] = p
		c.mu.Unlock()
		c.armQoS1Timer(id, p)
		c.metrics.pendingQoS1.Inc()
	} else if qos == 2 {
		p := &outboundQoS2{topic: topicName, payload: payload, retain: retain, state: "AWAIT_PUBREC"}
		c.mu.Lock()
		c.pendingQoS2[id] = p
		c.mu.Unlock()
		c.armQoS2Timer(id, p)
		c.metrics.pendingQoS2.Inc()
	}

	c.metrics.published.Inc()
	return s.send(raw)
}

// armQoS1Timer (re)arms the periodic resend timer for an outstanding QoS 1
// publish, cancelling any timer it already holds first so a reconnect
// resume never ends up with two timers driving the same packet id.
func (c *Client) armQoS1Timer(id uint16, p *outboundQoS1) {
	if p.timer != nil {
		p.timer.Cancel()
	}
	interval := c.opts.retryInterval().Time()
	p.timer = c.loop.AddTimer(interval, interval, func(time.Time) {
		c.mu.Lock()
		q, ok := c.pendingQoS1[id]
		c.mu.Unlock()
		if ok {
			c.resendQoS1(id, q)
		}
	})
}

// armQoS2Timer is armQoS1Timer's counterpart for outstanding QoS 2
// publishes.
func (c *Client) armQoS2Timer(id uint16, p *outboundQoS2) {
	if p.timer != nil {
		p.timer.Cancel()
	}
	interval := c.opts.retryInterval().Time()
	p.timer = c.loop.AddTimer(interval, interval, func(time.Time) {
		c.mu.Lock()
		q, ok := c.pendingQoS2[id]
		c.mu.Unlock()
		if ok {
			c.resendQoS2(id, q)
		}
	})
}

// resendQoS1 re-sends a PUBLISH with DUP set, or abandons it once
// Options.MaxRetry is exceeded (spec.md §4.9 "Outbound QoS 1").
func (c *Client) resendQoS1(id uint16, p *outboundQoS1) {
	c.mu.Lock()
	if p.retries >= c.opts.maxRetry() {
		delete(c.pendingQoS1, id)
		if p.timer != nil {
			p.timer.Cancel()
		}
		c.mu.Unlock()
		c.metrics.pendingQoS1.Dec()
		c.metrics.abandoned.Inc()
		if cb := c.OnError; cb != nil {
			cb(fmt.Errorf("mqtt: publish %d abandoned after %d retries", id, p.retries))
		}
		return
	}
	p.retries++
	s := c.snd
	v := c.opts.Version
	c.mu.Unlock()

	if s == nil {
		return
	}
	raw, err := wire.EncodePublish(wire.Publish{Version: v, Topic: p.topic, Payload: p.payload, QoS: 1, Retain: p.retain, PacketID: id, Dup: true})
	if err == nil {
		_ = s.send(raw)
	}
}

// resendQoS2 re-drives whichever half of the QoS 2 handshake p is waiting
// on: the PUBLISH itself while AWAIT_PUBREC, or the PUBREL while
// AWAIT_PUBCOMP (spec.md §4.9 "Outbound QoS 2").
func (c *Client) resendQoS2(id uint16, p *outboundQoS2) {
	c.mu.Lock()
	if p.retries >= c.opts.maxRetry() {
		delete(c.pendingQoS2, id)
		if p.timer != nil {
			p.timer.Cancel()
		}
		c.mu.Unlock()
		c.metrics.pendingQoS2.Dec()
		c.metrics.abandoned.Inc()
		if cb := c.OnError; cb != nil {
			cb(fmt.Errorf("mqtt: publish %d abandoned after %d retries", id, p.retries))
		}
		return
	}
	p.retries++
	s := c.snd
	v := c.opts.Version
	state := p.state
	c.mu.Unlock()

	if s == nil {
		return
	}
	if state == "AWAIT_PUBREC" {
		raw, err := wire.EncodePublish(wire.Publish{Version: v, Topic: p.topic, Payload: p.payload, QoS: 2, Retain: p.retain, PacketID: id, Dup: true})
		if err == nil {
			_ = s.send(raw)
		}
	} else {
		raw, err := wire.EncodeAck(wire.Ack{Type: wire.TypePUBREL, Version: v, PacketID: id})
		if err == nil {
			_ = s.send(raw)
		}
	}
}

func (c *Client) handlePuback(a wire.Ack) {
	c.mu.Lock()
	p, ok := c.pendingQoS1[a.PacketID]
	if ok {
		delete(c.pendingQoS1, a.PacketID)
	}
	c.mu.Unlock()
	if ok {
		if p.timer != nil {
			p.timer.Cancel()
		}
		c.metrics.pendingQoS1.Dec()
	}
}

func (c *Client) handlePubrec(a wire.Ack) {
	c.mu.Lock()
	p, ok := c.pendingQoS2[a.PacketID]
	if !ok {
		c.mu.Unlock()
		return
	}
	p.state = "AWAIT_PUBCOMP"
	p.retries = 0
	s := c.snd
	v := c.opts.Version
	c.mu.Unlock()

	raw, err := wire.EncodeAck(wire.Ack{Type: wire.TypePUBREL, Version: v, PacketID: a.PacketID})
	if err == nil && s != nil {
		_ = s.send(raw)
	}
}

func (c *Client) handlePubcomp(a wire.Ack) {
	c.mu.Lock()
	p, ok := c.pendingQoS2[a.PacketID]
	if ok {
		delete(c.pendingQoS2, a.PacketID)
	}
	c.mu.Unlock()
	if ok {
		if p.timer != nil {
			p.timer.Cancel()
		}
		c.metrics.pendingQoS2.Dec()
	}
}

// handlePublish dispatches an inbound PUBLISH: QoS 0 delivers immediately,
// QoS 1 delivers then PUBACKs, QoS 2 buffers until the matching PUBREL
// releases it, deduping a DUP-resent PUBLISH against an already-buffered
// entry (spec.md §4.9 "Inbound QoS 2").
func (c *Client) handlePublish(p wire.Publish) {
	c.mu.Lock()
	s := c.snd
	v := c.opts.Version
	c.mu.Unlock()

	switch p.QoS {
	case 0:
		c.deliver(p.Topic, p.Payload, 0, p.Retain)

	case 1:
		c.deliver(p.Topic, p.Payload, 1, p.Retain)
		raw, err := wire.EncodeAck(wire.Ack{Type: wire.TypePUBACK, Version: v, PacketID: p.PacketID})
		if err == nil && s != nil {
			_ = s.send(raw)
		}

	case 2:
		c.mu.Lock()
		if _, dup := c.pendingIn[p.PacketID]; !dup {
			c.pendingIn[p.PacketID] = &inboundQoS2{topic: p.Topic, payload: p.Payload, retain: p.Retain}
			c.metrics.pendingIn.Inc()
		}
		c.mu.Unlock()
		raw, err := wire.EncodeAck(wire.Ack{Type: wire.TypePUBREC, Version: v, PacketID: p.PacketID})
		if err == nil && s != nil {
			_ = s.send(raw)
		}
	}
}

func (c *Client) handlePubrel(a wire.Ack) {
	c.mu.Lock()
	in, ok := c.pendingIn[a.PacketID]
	if ok {
		delete(c.pendingIn, a.PacketID)
	}
	s := c.snd
	v := c.opts.Version
	c.mu.Unlock()

	if ok {
		c.metrics.pendingIn.Dec()
		c.deliver(in.topic, in.payload, 2, in.retain)
	}
	raw, err := wire.EncodeAck(wire.Ack{Type: wire.TypePUBCOMP, Version: v, PacketID: a.PacketID})
	if err == nil && s != nil {
		_ = s.send(raw)
	}
}

func (c *Client) deliver(topicName string, payload []byte, qos byte, retain bool) {
	if cb := c.OnMessage; cb != nil {
		cb(topicName, payload, qos, retain)
	}
}

// Subscribe sends a SUBSCRIBE for the given filters and records them so
// they are replayed after a non-resumed reconnect. filter syntax is not
// itself validated against topic.Valid here; callers that accept filters
// from untrusted input should call topic.Valid first.
func (c *Client) Subscribe(subs []wire.Subscription) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	id := c.nextPacketID()
	s := c.snd
	v := c.opts.Version
	for _, sub := range subs {
		c.subs[sub.Filter] = sub.QoS
	}
	c.mu.Unlock()

	raw, err := wire.EncodeSubscribe(wire.Subscribe{Version: v, PacketID: id, Subscriptions: subs})
	if err != nil {
		return err
	}
	return s.send(raw)
}

// Unsubscribe sends an UNSUBSCRIBE for the given filters and drops them
// from the replay list.
func (c *Client) Unsubscribe(filters []string) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	id := c.nextPacketID()
	s := c.snd
	v := c.opts.Version
	for _, f := range filters {
		delete(c.subs, f)
	}
	c.mu.Unlock()

	raw, err := wire.EncodeUnsubscribe(wire.Unsubscribe{Version: v, PacketID: id, Filters: filters})
	if err != nil {
		return err
	}
	return s.send(raw)
}

// IsSubscribed reports whether name matches any currently held
// subscription filter.
func (c *Client) IsSubscribed(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for f := range c.subs {
		if topic.Match(f, name) {
			return true
		}
	}
	return false
}

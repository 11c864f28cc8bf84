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

// Package mqtt implements an MQTT 3.1 / 3.1.1 / 5.0 client on top of the
// reactor event loop: transport selection (TCP, TLS, WebSocket and Secure
// WebSocket), the CONNECT/CONNACK handshake, keepalive, QoS 0/1/2 delivery
// in both directions, subscription management and auto-reconnect.
package mqtt

import (
	"crypto/tls"
	"fmt"

	libval "github.com/go-playground/validator/v10"
	libdur "github.com/nabbar/golib/duration"
	liblog "github.com/nabbar/golib/logger"
	"github.com/nabbar/golib/mqtt/wire"
)

// ReconnectOptions configures the auto-reconnect backoff described in
// spec.md §4.9 "Auto-reconnect". Disabled by default; set Enabled to opt in.
type ReconnectOptions struct {
	// Enabled turns on automatic reconnection after an unexpected
	// disconnect (a Disconnect call never triggers it).
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`

	// MaxAttempts bounds reconnect attempts; 0 means unlimited.
	MaxAttempts int `mapstructure:"maxAttempts" json:"maxAttempts" yaml:"maxAttempts" toml:"maxAttempts" validate:"gte=0"`

	// InitialDelay is the backoff before the first reconnect attempt.
	InitialDelay libdur.Duration `mapstructure:"initialDelay" json:"initialDelay" yaml:"initialDelay" toml:"initialDelay"`

	// MaxDelay caps the doubling backoff between attempts.
	MaxDelay libdur.Duration `mapstructure:"maxDelay" json:"maxDelay" yaml:"maxDelay" toml:"maxDelay"`
}

// Options configures one Client. Validate before use; New calls it
// internally and returns its error unwrapped.
type Options struct {
	// Address is the broker's host:port. Required.
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address" validate:"required"`

	// TLS, when non-nil, wraps the transport in TLS (port 8883 by
	// convention; spec.md §4.9 "Transport selection"). Left nil, the
	// client dials plain TCP (port 1883 by convention).
	TLS *tls.Config `mapstructure:"-" json:"-" yaml:"-" toml:"-"`

	// WSPath, when non-empty, layers WebSocket framing over the chosen
	// transport (plain or TLS); empty keeps raw MQTT framing directly over
	// the socket. Combined with TLS this is Secure WebSocket (wss).
	WSPath string `mapstructure:"wsPath" json:"wsPath" yaml:"wsPath" toml:"wsPath"`

	// ClientID identifies the session to the broker. Required by v3.1;
	// v3.1.1/v5 brokers may assign one when this is empty and CleanSession
	// is true, but this client always sends what it is given.
	ClientID string `mapstructure:"clientId" json:"clientId" yaml:"clientId" toml:"clientId"`

	// Version selects the protocol level advertised in CONNECT.
	Version wire.Version `mapstructure:"version" json:"version" yaml:"version" toml:"version" validate:"oneof=3 4 5"`

	// CleanSession (v3.x) / CleanStart (v5) requests a fresh session with
	// no prior subscriptions or in-flight state.
	CleanSession bool `mapstructure:"cleanSession" json:"cleanSession" yaml:"cleanSession" toml:"cleanSession"`

	// KeepAlive is the interval advertised in CONNECT; the client pings at
	// half of it and treats 1.5x as a dead connection (spec.md §4.9
	// "Keepalive"). Zero disables keepalive entirely.
	KeepAlive libdur.Duration `mapstructure:"keepAlive" json:"keepAlive" yaml:"keepAlive" toml:"keepAlive"`

	// ConnectTimeout bounds how long Connect waits for a CONNACK.
	ConnectTimeout libdur.Duration `mapstructure:"connectTimeout" json:"connectTimeout" yaml:"connectTimeout" toml:"connectTimeout"`

	// Username / Password are optional CONNECT credentials.
	Username     string `mapstructure:"username" json:"username" yaml:"username" toml:"username"`
	HasUsername  bool   `mapstructure:"hasUsername" json:"hasUsername" yaml:"hasUsername" toml:"hasUsername"`
	Password     []byte `mapstructure:"-" json:"-" yaml:"-" toml:"-"`
	HasPassword  bool   `mapstructure:"hasPassword" json:"hasPassword" yaml:"hasPassword" toml:"hasPassword"`

	// Will, when non-nil, is encoded into CONNECT; the broker publishes it
	// on an ungraceful disconnect. This client never re-publishes it
	// itself (spec.md §4.9 "Will": encoding only, no client-side replay).
	Will *WillMessage `mapstructure:"will" json:"will" yaml:"will" toml:"will"`

	// MaxRetry bounds QoS 1/2 resend attempts before the packet is
	// abandoned and reported to the error callback. Zero falls back to 3.
	MaxRetry int `mapstructure:"maxRetry" json:"maxRetry" yaml:"maxRetry" toml:"maxRetry" validate:"gte=0"`

	// RetryInterval spaces QoS 1/2 resends. Zero falls back to 5s.
	RetryInterval libdur.Duration `mapstructure:"retryInterval" json:"retryInterval" yaml:"retryInterval" toml:"retryInterval"`

	// MaxPayload bounds the remaining length this client will accept from
	// the broker before failing the connection (spec.md §7 "Parser
	// enforces a maximum payload size"). Zero disables the check.
	MaxPayload int `mapstructure:"maxPayload" json:"maxPayload" yaml:"maxPayload" toml:"maxPayload" validate:"gte=0"`

	// PersistPath, when non-empty, snapshots pending QoS 1/2 state and the
	// subscription list to this file across Disconnect/Connect cycles
	// (mqtt/persist). Empty disables persistence entirely.
	PersistPath string `mapstructure:"persistPath" json:"persistPath" yaml:"persistPath" toml:"persistPath"`

	// Reconnect configures automatic reconnection after an unexpected
	// disconnect.
	Reconnect ReconnectOptions `mapstructure:"reconnect" json:"reconnect" yaml:"reconnect" toml:"reconnect"`

	// Log, when set, is consulted for connect/disconnect/retry/error
	// events. A nil Log logs nothing (see logger.Resolve).
	Log liblog.FuncLog `mapstructure:"-" json:"-" yaml:"-" toml:"-"`
}

// WillMessage is the optional CONNECT will payload (spec.md §4.9 "Will").
type WillMessage struct {
	Topic   string `mapstructure:"topic" json:"topic" yaml:"topic" toml:"topic" validate:"required"`
	Payload []byte `mapstructure:"-" json:"-" yaml:"-" toml:"-"`
	QoS     byte   `mapstructure:"qos" json:"qos" yaml:"qos" toml:"qos" validate:"lte=2"`
	Retain  bool   `mapstructure:"retain" json:"retain" yaml:"retain" toml:"retain"`
}

// Logger returns o.Log resolved through logger.Resolve.
func (o Options) Logger() liblog.Logger {
	return liblog.Resolve(o.Log)
}

// usesWebSocket reports whether WSPath selects WebSocket framing.
func (o Options) usesWebSocket() bool {
	return o.WSPath != ""
}

// usesTLS reports whether the transport is wrapped in TLS.
func (o Options) usesTLS() bool {
	return o.TLS != nil
}

// keepAliveSeconds returns the CONNECT keepalive field, clamped to uint16.
func (o Options) keepAliveSeconds() uint16 {
	sec := o.KeepAlive.Time().Seconds()
	if sec <= 0 {
		return 0
	}
	if sec > 65535 {
		return 65535
	}
	return uint16(sec)
}

// maxRetry returns o.MaxRetry, defaulting to 3 when unset.
func (o Options) maxRetry() int {
	if o.MaxRetry <= 0 {
		return 3
	}
	return o.MaxRetry
}

// retryInterval returns o.RetryInterval, defaulting to 5s when unset.
func (o Options) retryInterval() libdur.Duration {
	if o.RetryInterval <= 0 {
		return libdur.Seconds(5)
	}
	return o.RetryInterval
}

// connectTimeout returns o.ConnectTimeout, defaulting to 10s when unset.
func (o Options) connectTimeout() libdur.Duration {
	if o.ConnectTimeout <= 0 {
		return libdur.Seconds(10)
	}
	return o.ConnectTimeout
}

// Validate checks struct-tag constraints via go-playground/validator and a
// handful of cross-field rules the tags cannot express.
func (o Options) Validate() error {
	if er := libval.New().Struct(o); er != nil {
		if _, ok := er.(*libval.InvalidValidationError); ok {
			return er
		}
		for _, e := range er.(libval.ValidationErrors) {
			return fmt.Errorf("mqtt: option field %q fails constraint %q", e.StructNamespace(), e.ActualTag())
		}
	}
	if o.Version == wire.Version31 && o.ClientID == "" {
		return fmt.Errorf("mqtt: client id is required for protocol version 3.1")
	}
	return nil
}

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

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a Client's prometheus.Collector: register it with any
// prometheus.Registerer to export in-flight QoS state and reconnect
// activity, mirroring reactor.Metrics for the loop itself.
type Metrics struct {
	pendingQoS1 prometheus.Gauge
	pendingQoS2 prometheus.Gauge
	pendingIn   prometheus.Gauge
	published   prometheus.Counter
	reconnects  prometheus.Counter
	abandoned   prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		pendingQoS1: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mqtt",
			Name:      "pending_qos1",
			Help:      "Number of QoS 1 publishes awaiting PUBACK.",
		}),
		pendingQoS2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mqtt",
			Name:      "pending_qos2",
			Help:      "Number of QoS 2 publishes awaiting PUBREC/PUBCOMP.",
		}),
		pendingIn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mqtt",
			Name:      "pending_inbound_qos2",
			Help:      "Number of broker-initiated QoS 2 messages buffered awaiting PUBREL.",
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mqtt",
			Name:      "publish_total",
			Help:      "Number of PUBLISH packets sent, across all QoS levels.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mqtt",
			Name:      "reconnect_attempts_total",
			Help:      "Number of auto-reconnect dial attempts made.",
		}),
		abandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mqtt",
			Name:      "publish_abandoned_total",
			Help:      "Number of QoS 1/2 publishes abandoned after exhausting retries.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.pendingQoS1.Describe(ch)
	m.pendingQoS2.Describe(ch)
	m.pendingIn.Describe(ch)
	m.published.Describe(ch)
	m.reconnects.Describe(ch)
	m.abandoned.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.pendingQoS1.Collect(ch)
	m.pendingQoS2.Collect(ch)
	m.pendingIn.Collect(ch)
	m.published.Collect(ch)
	m.reconnects.Collect(ch)
	m.abandoned.Collect(ch)
}

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

package reactor

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a Loop's prometheus.Collector: register it with any
// prometheus.Registerer to export turn throughput, turn latency, and live
// handle population.
type Metrics struct {
	handles     prometheus.Gauge
	turns       prometheus.Counter
	turnLatency prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		handles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reactor",
			Name:      "handles_active",
			Help:      "Number of handles currently registered with the loop.",
		}),
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactor",
			Name:      "turns_total",
			Help:      "Number of turn cycles the loop has executed.",
		}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reactor",
			Name:      "turn_duration_seconds",
			Help:      "Wall-clock duration of a single turn cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.handles.Describe(ch)
	m.turns.Describe(ch)
	m.turnLatency.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.handles.Collect(ch)
	m.turns.Collect(ch)
	m.turnLatency.Collect(ch)
}

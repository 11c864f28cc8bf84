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

// Package dns resolves host:port endpoints without ever blocking the
// reactor's own goroutine: every lookup runs on its own helper goroutine,
// and the result is handed back onto the Loop through Loop.QueueWork, the
// same cross-thread path every other external completion in this tree
// uses.
package dns

import (
	"context"
	"net"
	"strconv"
	"time"

	liblog "github.com/nabbar/golib/logger"
	librct "github.com/nabbar/golib/reactor"
)

// Result is delivered to a Resolve callback once a lookup finishes, on the
// Loop's own goroutine.
type Result struct {
	Host string
	Port uint16
	IPs  []net.IP
	Err  error
}

// Resolver issues asynchronous lookups against a net.Resolver, always
// surfacing their result through a Loop.
type Resolver struct {
	loop     *librct.Loop
	resolver *net.Resolver
	timeout  time.Duration
	log      liblog.FuncLog
}

// New creates a Resolver that delivers results onto l. A nil res uses
// net.DefaultResolver; timeout <= 0 disables the per-lookup deadline.
func New(l *librct.Loop, res *net.Resolver, timeout time.Duration) *Resolver {
	if res == nil {
		res = net.DefaultResolver
	}
	return &Resolver{loop: l, resolver: res, timeout: timeout}
}

// SetLogger installs the FuncLog consulted for lookup failures.
func (r *Resolver) SetLogger(f liblog.FuncLog) {
	r.log = f
}

// Resolve splits addr into host and port, looks up host's addresses on a
// helper goroutine, and invokes cb with the Result from the Loop's own
// goroutine once the lookup completes (successfully or not).
func (r *Resolver) Resolve(addr string, cb func(Result)) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		r.loop.QueueWork(func() { cb(Result{Err: err}) })
		return
	}

	var port uint64
	if portStr != "" {
		if port, err = strconv.ParseUint(portStr, 10, 16); err != nil {
			r.loop.QueueWork(func() { cb(Result{Host: host, Err: err}) })
			return
		}
	}

	go r.lookup(host, uint16(port), cb)
}

func (r *Resolver) lookup(host string, port uint16, cb func(Result)) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	addrs, err := r.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		liblog.Resolve(r.log).Warning("dns lookup failed", map[string]interface{}{
			"host":  host,
			"error": err.Error(),
		})
	}

	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}

	res := Result{Host: host, Port: port, IPs: ips, Err: err}
	r.loop.QueueWork(func() { cb(res) })
}

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

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	libmph "github.com/nabbar/golib/mpool"
	librct "github.com/nabbar/golib/reactor"
	libbck "github.com/nabbar/golib/reactor/backend"
	libcli "github.com/nabbar/golib/socket/client/tcp"
	libsrv "github.com/nabbar/golib/socket/server/tcp"
)

// echoListener accepts every connection with an echoConn, so a single
// listener serves arbitrarily many clients off the same loop goroutine.
type echoListener struct{}

func (echoListener) OnAccept(c *libcli.Conn) libcli.Handler { return echoConn{} }
func (echoListener) OnListenError(err error)                { logOut.Warnf("reactord: accept error: %v", err) }

// echoConn writes back whatever it reads, until the peer closes.
type echoConn struct{}

func (echoConn) OnConnect(c *libcli.Conn)          {}
func (echoConn) OnData(c *libcli.Conn, data []byte) { c.Write(data) }
func (echoConn) OnClose(c *libcli.Conn, err error)  {}

var metricsAddr string

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a reactor loop with a TCP echo listener",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on, empty disables it")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	srvCfg, err := cfg.Listen.toServerConfig()
	if err != nil {
		return err
	}
	srvCfg.Log = newLogger

	be, err := libbck.NewPoll()
	if err != nil {
		return fmt.Errorf("reactord: creating backend: %w", err)
	}
	loop := librct.NewLoop(be)
	loop.SetLogger(newLogger)
	defer loop.Close()

	pool := libmph.New(&libmph.Config{ThreadSafe: true})

	ln, err := libsrv.Listen(srvCfg, pool, echoListener{})
	if err != nil {
		return fmt.Errorf("reactord: listen: %w", err)
	}
	if err = ln.Register(loop); err != nil {
		return fmt.Errorf("reactord: register listener: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "reactord: echoing on %s\n", ln.Addr())

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(loop.Metrics())
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() { _ = http.ListenAndServe(metricsAddr, mux) }()
		fmt.Fprintf(cmd.OutOrStdout(), "reactord: metrics on %s/metrics\n", metricsAddr)
	}

	go func() { _ = loop.Run(librct.RunDefault) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	loop.Stop()
	return nil
}

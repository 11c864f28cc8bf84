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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	uuid "github.com/hashicorp/go-uuid"
	"github.com/spf13/cobra"

	libmph "github.com/nabbar/golib/mpool"
	"github.com/nabbar/golib/mqtt"
	"github.com/nabbar/golib/mqtt/wire"
	librct "github.com/nabbar/golib/reactor"
	libbck "github.com/nabbar/golib/reactor/backend"
)

var echoTopic string

func newMQTTEchoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mqtt-echo",
		Short: "Connect to a broker and echo every message back to its topic",
		RunE:  runMQTTEcho,
	}
	cmd.Flags().StringVar(&echoTopic, "topic", "reactord/echo", "topic filter to subscribe and echo")
	return cmd
}

func runMQTTEcho(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	opts := cfg.MQTT
	if opts.ClientID == "" {
		id, genErr := uuid.GenerateUUID()
		if genErr != nil {
			return fmt.Errorf("reactord: generating client id: %w", genErr)
		}
		opts.ClientID = "reactord-" + id
	}
	opts.Log = newLogger

	be, err := libbck.NewPoll()
	if err != nil {
		return fmt.Errorf("reactord: creating backend: %w", err)
	}
	loop := librct.NewLoop(be)
	loop.SetLogger(newLogger)
	defer loop.Close()
	go func() { _ = loop.Run(librct.RunDefault) }()

	pool := libmph.New(&libmph.Config{ThreadSafe: true})

	cl, err := mqtt.New(loop, pool, opts)
	if err != nil {
		return fmt.Errorf("reactord: configuring client: %w", err)
	}
	cl.OnMessage = func(topicName string, payload []byte, qos byte, retain bool) {
		fmt.Fprintf(cmd.OutOrStdout(), "reactord: echoing %d bytes on %s\n", len(payload), topicName)
		if err := cl.Publish(topicName, payload, qos, retain); err != nil {
			logOut.Warnf("reactord: echo publish failed: %v", err)
		}
	}
	cl.OnError = func(err error) { logOut.Warnf("reactord: mqtt error: %v", err) }
	cl.OnDisconnect = func(err error) {
		if err != nil {
			logOut.Warnf("reactord: disconnected: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := cl.Connect(ctx); err != nil {
		return fmt.Errorf("reactord: connect: %w", err)
	}
	if err := cl.Subscribe([]wire.Subscription{{Filter: echoTopic, QoS: 1}}); err != nil {
		return fmt.Errorf("reactord: subscribe: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "reactord: echoing %s as %s\n", echoTopic, opts.ClientID)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return cl.Disconnect()
}

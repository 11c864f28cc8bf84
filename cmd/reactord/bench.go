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
	"time"

	uuid "github.com/hashicorp/go-uuid"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	libmph "github.com/nabbar/golib/mpool"
	"github.com/nabbar/golib/mqtt"
	librct "github.com/nabbar/golib/reactor"
	libbck "github.com/nabbar/golib/reactor/backend"
)

var (
	benchCount int
	benchTopic string
)

func newBenchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Publish a burst of QoS 0 messages and report throughput",
		RunE:  runBench,
	}
	cmd.Flags().IntVar(&benchCount, "count", 1000, "number of messages to publish")
	cmd.Flags().StringVar(&benchTopic, "topic", "reactord/bench", "topic to publish to")
	return cmd
}

func runBench(cmd *cobra.Command, _ []string) error {
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
		opts.ClientID = "reactord-bench-" + id
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := cl.Connect(ctx); err != nil {
		return fmt.Errorf("reactord: connect: %w", err)
	}
	defer func() { _ = cl.Disconnect() }()

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(benchCount),
		mpb.PrependDecorators(decor.Name("publish")),
		mpb.AppendDecorators(decor.Percentage()),
	)

	start := time.Now()
	for i := 0; i < benchCount; i++ {
		payload := []byte(fmt.Sprintf("reactord-bench-%d", i))
		if err := cl.Publish(benchTopic, payload, 0, false); err != nil {
			return fmt.Errorf("reactord: publish %d: %w", i, err)
		}
		bar.Increment()
	}
	p.Wait()

	elapsed := time.Since(start)
	fmt.Fprintf(cmd.OutOrStdout(), "reactord: published %d messages in %s (%.0f msg/s)\n",
		benchCount, elapsed, float64(benchCount)/elapsed.Seconds())
	return nil
}

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

// Command reactord is the example/bench binary for the reactor event loop
// and its MQTT client: "serve" runs a TCP echo listener on a loop,
// "mqtt-echo" bridges that loop to an MQTT broker, and "bench" drives a
// short publish load test against one. It is the "misc: external
// collaborator" binary layer, not itself part of the reactor/mqtt API.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	liblog "github.com/nabbar/golib/logger"
)

var (
	cfgFile string
	logOut  = logrus.New()
)

func newLogger() liblog.Logger {
	return liblog.New(logOut)
}

func main() {
	root := &cobra.Command{
		Use:   "reactord",
		Short: "Reactor event loop and MQTT client example binary",
		Long: "reactord demonstrates the reactor event loop, its transport\n" +
			"handles and the mqtt client on top of it: a plain TCP echo\n" +
			"listener, an MQTT echo bridge, and a small publish load test.",
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML config file")

	root.AddCommand(newServeCommand())
	root.AddCommand(newMQTTEchoCommand())
	root.AddCommand(newBenchCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

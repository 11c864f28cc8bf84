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

	libdur "github.com/nabbar/golib/duration"
	"github.com/nabbar/golib/mqtt"
	"github.com/nabbar/golib/mqtt/wire"
	libptc "github.com/nabbar/golib/network/protocol"
	libskc "github.com/nabbar/golib/socket/config"
	"github.com/spf13/viper"
)

// listenConfig is the YAML/ENV-facing shape of socket/config.Server: only
// the fields a plain TCP echo listener needs, kept flat for viper binding.
type listenConfig struct {
	Network        string          `mapstructure:"network"`
	Address        string          `mapstructure:"address"`
	ConIdleTimeout libdur.Duration `mapstructure:"conIdleTimeout"`
}

func (l listenConfig) toServerConfig() (libskc.Server, error) {
	proto := libptc.Parse(l.Network)
	if proto == libptc.NetworkEmpty {
		return libskc.Server{}, fmt.Errorf("reactord: invalid listen network %q", l.Network)
	}
	return libskc.Server{
		Network:        proto,
		Address:        l.Address,
		ConIdleTimeout: l.ConIdleTimeout,
	}, nil
}

// appConfig is the root of reactord's YAML configuration file, loaded by
// viper in the same "one struct, one Unmarshal" shape the teacher's
// config/components packages bind their own sections in.
type appConfig struct {
	Listen listenConfig `mapstructure:"listen"`
	MQTT   mqtt.Options `mapstructure:"mqtt"`
}

func defaultConfig() appConfig {
	return appConfig{
		Listen: listenConfig{
			Network: "tcp",
			Address: "127.0.0.1:17883",
		},
		MQTT: mqtt.Options{
			Version:      wire.Version311,
			CleanSession: true,
		},
	}
}

// loadConfig reads path (if non-empty) through viper and unmarshals it onto
// defaultConfig()'s zero values, so an absent or partial file still yields a
// runnable configuration.
func loadConfig(path string) (appConfig, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reactord: reading config %q: %w", path, err)
		}
	}
	v.SetEnvPrefix("REACTORD")
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reactord: decoding config: %w", err)
	}
	return cfg, nil
}

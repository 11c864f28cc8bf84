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

package logger

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// lgr is the default Logger, backed by logrus the same way the teacher's
// own default logger construction did (logrus.New()).
type lgr struct {
	mu     sync.RWMutex
	level  Level
	log    *logrus.Logger
	fields map[string]interface{}
}

// New returns a Logger backed by logrus, writing to out at InfoLevel.
func New(out *logrus.Logger) Logger {
	if out == nil {
		out = logrus.New()
	}
	return &lgr{log: out, level: InfoLevel}
}

func (l *lgr) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lvl
	l.log.SetLevel(lvl.Logrus())
}

func (l *lgr) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *lgr) entry(fields map[string]interface{}) *logrus.Entry {
	l.mu.RLock()
	base := l.fields
	l.mu.RUnlock()

	merged := make(logrus.Fields, len(base)+len(fields))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return l.log.WithFields(merged)
}

// logs reports whether a message at msg severity should be emitted under a
// logger configured at cfg: NilLevel disables everything, otherwise higher
// enum values (Debug being the highest) are progressively more verbose.
func logs(cfg, msg Level) bool {
	return cfg != NilLevel && cfg >= msg
}

func (l *lgr) Debug(message string, fields map[string]interface{}) {
	if logs(l.GetLevel(), DebugLevel) {
		l.entry(fields).Debug(message)
	}
}

func (l *lgr) Info(message string, fields map[string]interface{}) {
	if logs(l.GetLevel(), InfoLevel) {
		l.entry(fields).Info(message)
	}
}

func (l *lgr) Warning(message string, fields map[string]interface{}) {
	if logs(l.GetLevel(), WarnLevel) {
		l.entry(fields).Warn(message)
	}
}

func (l *lgr) Error(message string, fields map[string]interface{}) {
	if logs(l.GetLevel(), ErrorLevel) {
		l.entry(fields).Error(message)
	}
}

func (l *lgr) Fatal(message string, fields map[string]interface{}) {
	l.entry(fields).Fatal(message)
}

func (l *lgr) Panic(message string, fields map[string]interface{}) {
	l.entry(fields).Panic(message)
}

func (l *lgr) WithFields(field map[string]interface{}) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	merged := make(map[string]interface{}, len(l.fields)+len(field))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range field {
		merged[k] = v
	}
	return &lgr{log: l.log, level: l.level, fields: merged}
}

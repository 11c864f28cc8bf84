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

// Package logger is the ambient logging seam shared by the reactor, the
// transport handles, the TLS engine and the MQTT client: every one of them
// takes a FuncLog instead of a concrete Logger so callers can swap
// implementations without an import cycle back into this package.
package logger

// FuncLog is a function type that returns a Logger instance. Components
// accept a FuncLog rather than a Logger so the logger can be swapped, or
// left nil (Discard is then used), without those components importing a
// concrete implementation.
type FuncLog func() Logger

// Logger is the minimal structured-logging surface this tree's components
// depend on: leveled entries with key/value fields, no framework bridges.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level

	Debug(message string, fields map[string]interface{})
	Info(message string, fields map[string]interface{})
	Warning(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
	Fatal(message string, fields map[string]interface{})
	Panic(message string, fields map[string]interface{})

	// WithFields returns a Logger that merges field into every entry it logs,
	// in addition to whatever the caller passes at the call site.
	WithFields(field map[string]interface{}) Logger
}

// Discard is a Logger that drops every entry; the default used whenever a
// FuncLog is nil or returns nil.
var Discard Logger = discard{}

type discard struct{}

func (discard) SetLevel(Level)                                {}
func (discard) GetLevel() Level                                { return NilLevel }
func (discard) Debug(string, map[string]interface{})           {}
func (discard) Info(string, map[string]interface{})            {}
func (discard) Warning(string, map[string]interface{})         {}
func (discard) Error(string, map[string]interface{})           {}
func (discard) Fatal(string, map[string]interface{})           {}
func (discard) Panic(string, map[string]interface{})           {}
func (discard) WithFields(map[string]interface{}) Logger       { return discard{} }

// Resolve calls f and returns Discard in place of a nil FuncLog or a nil
// return value, so callers can always log through the result unconditionally.
func Resolve(f FuncLog) Logger {
	if f == nil {
		return Discard
	}
	if l := f(); l != nil {
		return l
	}
	return Discard
}

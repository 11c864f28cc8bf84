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

package config

import "github.com/nabbar/golib/errors"

const (
	ErrorInvalidProtocol errors.CodeError = iota + errors.MinPkgSocket
	ErrorInvalidAddress
	ErrorInvalidTLSConfig
	ErrorInvalidGroup
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorInvalidProtocol)
	errors.RegisterIdFctMessage(ErrorInvalidProtocol, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorInvalidProtocol:
		return "invalid protocol for socket configuration"
	case ErrorInvalidAddress:
		return "invalid network address"
	case ErrorInvalidTLSConfig:
		return "invalid TLS config"
	case ErrorInvalidGroup:
		return "invalid unix group id"
	}

	return ""
}

// ErrInvalidProtocol is returned by Validate when Network is empty/unknown
// or incompatible with the given Address.
var ErrInvalidProtocol = ErrorInvalidProtocol.Error()

// ErrInvalidAddress is returned by Validate when Address cannot be resolved
// for the configured Network.
var ErrInvalidAddress = ErrorInvalidAddress.Error()

// ErrInvalidTLSConfig is returned by Validate when TLS is enabled on a
// non-stream protocol, or a client enables TLS without a ServerName.
var ErrInvalidTLSConfig = ErrorInvalidTLSConfig.Error()

// ErrInvalidGroup is returned by Validate when GroupPerm exceeds MaxGID.
var ErrInvalidGroup = ErrorInvalidGroup.Error()

// MaxGID is the largest group id accepted for Server.GroupPerm, matching the
// historical 16-bit signed GID ceiling used by most Unix systems.
const MaxGID int32 = 32767

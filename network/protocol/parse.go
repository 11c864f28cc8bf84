/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package protocol

import "strings"

// Parse converts a network protocol string (as accepted by net.Dial /
// net.Listen, plus "unixgram") into a NetworkProtocol. It is tolerant of
// surrounding whitespace, wrapping quotes (", ` or escaped \") and case.
// Unknown input returns NetworkEmpty.
func Parse(s string) NetworkProtocol {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	s = strings.Trim(s, `"`)
	s = strings.ToLower(s)

	if p, ok := protocolByCode[s]; ok {
		return p
	}

	return NetworkEmpty
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(p []byte) NetworkProtocol {
	return Parse(string(p))
}

// ParseInt converts an ordinal (as produced by NetworkProtocol.Int) back
// into a NetworkProtocol. Out-of-range values return NetworkEmpty.
func ParseInt(i int64) NetworkProtocol {
	if i < 0 || i > int64(NetworkUnixGram) {
		return NetworkEmpty
	}

	p := NetworkProtocol(i)
	if _, ok := codeByProtocol[p]; !ok {
		return NetworkEmpty
	}

	return p
}

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

// Package topic implements OASIS MQTT topic filter matching: the "+"
// single-level and "#" multi-level wildcards a subscription filter may
// carry, matched against a concrete published topic name.
package topic

import "strings"

// Match reports whether the published topic name matches filter, applying
// the OASIS wildcard rules: "+" matches exactly one level, "#" (only
// legal as the final level) matches that level and every level below it.
// A filter beginning with "$" (e.g. "$SYS/...") only matches a topic that
// explicitly shares that same leading level; a bare wildcard never
// implicitly matches it.
func Match(filter, name string) bool {
	if filter == "" || name == "" {
		return false
	}
	if strings.HasPrefix(name, "$") && !strings.HasPrefix(filter, "$") {
		return false
	}

	fParts := strings.Split(filter, "/")
	nParts := strings.Split(name, "/")

	for i, f := range fParts {
		if f == "#" {
			return i == len(fParts)-1
		}
		if i >= len(nParts) {
			return false
		}
		if f != "+" && f != nParts[i] {
			return false
		}
	}
	return len(fParts) == len(nParts)
}

// Valid reports whether filter obeys the OASIS syntax rules: "#" may only
// appear alone as the final level, "+" may only appear alone within a
// level, and the filter is not empty.
func Valid(filter string) bool {
	if filter == "" {
		return false
	}
	parts := strings.Split(filter, "/")
	for i, p := range parts {
		if strings.Contains(p, "#") && (p != "#" || i != len(parts)-1) {
			return false
		}
		if strings.Contains(p, "+") && p != "+" {
			return false
		}
	}
	return true
}

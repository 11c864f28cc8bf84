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

package mpool

import "sync"

// registry holds process-wide named pools so unrelated packages can share a
// pool (the reactor's read-buffer pool, for instance) without threading a
// *Pool value through every constructor.
var registry sync.Map // map[string]*Pool

// Register associates name with p, replacing any pool previously registered
// under the same name.
func Register(name string, p *Pool) {
	registry.Store(name, p)
}

// Lookup returns the pool registered under name, or nil if none exists.
func Lookup(name string) *Pool {
	v, ok := registry.Load(name)
	if !ok {
		return nil
	}
	return v.(*Pool)
}

// Unregister removes name from the registry.
func Unregister(name string) {
	registry.Delete(name)
}

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

import "github.com/nabbar/golib/errors"

const (
	ErrorBlocksOutstanding errors.CodeError = iota + errors.MinPkgMPool
	ErrorUnknownBlock
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorBlocksOutstanding)
	errors.RegisterIdFctMessage(ErrorBlocksOutstanding, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorBlocksOutstanding:
		return "cannot reset pool with blocks still outstanding"
	case ErrorUnknownBlock:
		return "block does not belong to this pool"
	}

	return ""
}

// ErrBlocksOutstanding is returned by Pool.Reset when blocks allocated from
// the pool have not all been freed.
var ErrBlocksOutstanding = ErrorBlocksOutstanding.Error()

// ErrUnknownBlock is returned when a block from a different pool is passed
// to Free/Realloc.
var ErrUnknownBlock = ErrorUnknownBlock.Error()

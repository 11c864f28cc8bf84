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

package queue_test

import (
	"sync"

	"github.com/nabbar/golib/queue"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SPSC", func() {
	It("rounds capacity up to a power of two", func() {
		q := queue.NewSPSC(5, nil)
		Expect(q.Capacity()).To(Equal(8))
	})

	It("rejects enqueue once full and preserves order", func() {
		q := queue.NewSPSC(4, nil)
		for i := 0; i < 4; i++ {
			Expect(q.Enqueue(i)).To(BeTrue())
		}
		Expect(q.Enqueue(99)).To(BeFalse())
		Expect(q.Full()).To(BeTrue())

		for i := 0; i < 4; i++ {
			v, ok := q.Dequeue()
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(i))
		}
		Expect(q.Empty()).To(BeTrue())
	})

	It("delivers every item exactly once under a real producer/consumer pair", func() {
		const n = 10000
		q := queue.NewSPSC(128, nil)

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				for !q.Enqueue(i) {
				}
			}
		}()

		received := make([]int, 0, n)
		go func() {
			defer wg.Done()
			for len(received) < n {
				if v, ok := q.Dequeue(); ok {
					received = append(received, v.(int))
				}
			}
		}()

		wg.Wait()

		Expect(received).To(HaveLen(n))
		for i, v := range received {
			Expect(v).To(Equal(i))
		}
	})
})

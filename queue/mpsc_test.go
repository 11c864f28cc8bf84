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

var _ = Describe("MPSC", func() {
	It("rejects enqueue once full", func() {
		q := queue.NewMPSC(2, nil)
		Expect(q.Enqueue(1)).To(BeTrue())
		Expect(q.Enqueue(2)).To(BeTrue())
		Expect(q.Enqueue(3)).To(BeFalse())
	})

	It("delivers exactly P*N items, each appearing once, with producer-local order preserved", func() {
		const producers = 8
		const perProducer = 2000
		q := queue.NewMPSC(1024, nil)

		var wg sync.WaitGroup
		wg.Add(producers)
		for p := 0; p < producers; p++ {
			go func(base int) {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					for !q.Enqueue(base*perProducer + i) {
					}
				}
			}(p)
		}

		total := producers * perProducer
		received := make([]int, 0, total)
		var mu sync.Mutex
		done := make(chan struct{})

		go func() {
			for {
				if v, ok := q.Dequeue(); ok {
					mu.Lock()
					received = append(received, v.(int))
					mu.Unlock()
				}
				mu.Lock()
				n := len(received)
				mu.Unlock()
				if n == total {
					close(done)
					return
				}
			}
		}()

		wg.Wait()
		<-done

		Expect(received).To(HaveLen(total))

		seen := make(map[int]bool, total)
		perProducerSeq := make([][]int, producers)
		for _, v := range received {
			Expect(seen[v]).To(BeFalse())
			seen[v] = true
			p := v / perProducer
			perProducerSeq[p] = append(perProducerSeq[p], v)
		}
		for _, seq := range perProducerSeq {
			for i := 1; i < len(seq); i++ {
				Expect(seq[i]).To(BeNumerically(">", seq[i-1]))
			}
		}
	})
})

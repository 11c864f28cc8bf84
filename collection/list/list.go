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

// Package list implements an intrusive doubly-linked list: the link pointers
// live on the caller's own Node embedding, so adding or removing an element
// never allocates. The reactor uses this for its live-handle list, where
// handles attach themselves once and get walked every turn.
package list

// Node is embedded by any type that wants to live on a List. A Node must
// not be embedded in more than one List at a time, and its zero value is
// ready to use. Value carries whatever payload the caller needs back out
// of a ForEachSafe walk, mirroring container/list.Element.
type Node struct {
	Value      interface{}
	next, prev *Node
	list       *List
}

// InList reports whether n is currently attached to a List.
func (n *Node) InList() bool {
	return n.list != nil
}

// List is an intrusive doubly-linked list with a sentinel root node.
type List struct {
	root Node
	len  int
}

// New returns an empty, ready-to-use List.
func New() *List {
	l := &List{}
	l.root.next = &l.root
	l.root.prev = &l.root
	return l
}

func (l *List) lazyInit() {
	if l.root.next == nil {
		l.root.next = &l.root
		l.root.prev = &l.root
	}
}

// Len returns the number of nodes currently attached to l.
func (l *List) Len() int {
	return l.len
}

// PushBack attaches n to the tail of l. It is a no-op if n is already
// attached to a list.
func (l *List) PushBack(n *Node) {
	if n.list != nil {
		return
	}
	l.lazyInit()

	last := l.root.prev
	last.next = n
	n.prev = last
	n.next = &l.root
	l.root.prev = n
	n.list = l
	l.len++
}

// Remove detaches n from l. It is a no-op if n is not attached to l.
func (l *List) Remove(n *Node) {
	if n.list != l {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.next = nil
	n.prev = nil
	n.list = nil
	l.len--
}

// ForEachSafe walks every node attached to l, invoking fn with each one.
// fn may remove the current node (or any other node already visited) from
// l without disrupting the walk; the next pointer is captured before fn
// runs.
func (l *List) ForEachSafe(fn func(n *Node)) {
	l.lazyInit()

	for n := l.root.next; n != &l.root; {
		next := n.next
		fn(n)
		n = next
	}
}

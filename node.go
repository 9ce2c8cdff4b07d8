// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package ilist implements a concurrent intrusive doubly-linked list whose
// members synchronize not through a list-wide mutex but through a
// "link-locking" discipline applied to individual prev/next pointers.
//
// A thread wishing to touch the edge between two adjacent nodes "cuts" it
// by atomically exchanging both of the edge's endpoints for a reserved,
// non-dereferenceable sentinel value, busy. The exchange both probes
// the prior state (another swap racing for the same edge will itself
// observe busy and know to back off) and acquires the exclusive right to
// reconnect the edge. Because only the two or three nodes adjacent to an
// operation are ever touched, unrelated operations elsewhere in the same
// list proceed fully in parallel; the price is a rollback-and-retry
// protocol in place of blocking, and no bound on how long a heavily
// contended operation may take to land.
//
// Every public operation is infallible beyond its documented sentinel
// return (a bool or a nil *Node): there are no shared/read locks, no
// fairness guarantee beyond probabilistic forward progress from
// exponential back-off, and no protection against a caller violating a
// precondition (inserting an already-linked node with the trusting
// variants, breaking a contract other than by returning the iterator's
// own control values, or beheading a list while another thread deletes a
// node out of its middle). See the package's iterator and Behead doc
// comments for the exact boundaries of that last restriction.
package ilist

import (
	"sync/atomic"
	"unsafe"
)

// busySentinel's address is the reserved BUSY pointer value: a private,
// otherwise-unused byte whose address can never coincide with a real
// *Node, and which is stable for the lifetime of the process.
var busySentinel byte

var busy = unsafe.Pointer(&busySentinel)

// busyNode is busy reinterpreted as a *Node purely so that comparisons
// and field stores can stay in terms of *Node instead of unsafe.Pointer.
var busyNode = (*Node)(busy)

// Node is the two-pointer link cell at the heart of every list member,
// and of the list head itself -- a head is simply a Node whose payload
// (if embedded in a larger struct) goes unused. Embed a Node as the
// first field of a payload struct, or use Entry for a ready-made
// generic wrapper, and never touch prev/next directly: every read here
// is an atomic load, every transition through busy is an atomic swap,
// and every publication of a live value is a release-ordered store.
type Node struct {
	prev unsafe.Pointer // *Node
	next unsafe.Pointer // *Node
}

func (n *Node) loadNext() *Node { return (*Node)(atomic.LoadPointer(&n.next)) }
func (n *Node) loadPrev() *Node { return (*Node)(atomic.LoadPointer(&n.prev)) }

func (n *Node) swapNext(v *Node) *Node {
	return (*Node)(atomic.SwapPointer(&n.next, unsafe.Pointer(v)))
}

func (n *Node) swapPrev(v *Node) *Node {
	return (*Node)(atomic.SwapPointer(&n.prev, unsafe.Pointer(v)))
}

func (n *Node) storeNext(v *Node) { atomic.StorePointer(&n.next, unsafe.Pointer(v)) }
func (n *Node) storePrev(v *Node) { atomic.StorePointer(&n.prev, unsafe.Pointer(v)) }

func isBusy(n *Node) bool { return unsafe.Pointer(n) == busy }

// NewHead initializes l as the head of an empty list: a circular
// self-loop. Calling NewHead on a node already in use as a list member
// or head is a contract violation (undefined behavior).
func NewHead(l *Node) {
	l.storePrev(l)
	l.storeNext(l)
}

// Detached reports whether n is currently a self-loop -- not a member of
// any list. The read is a pair of plain atomic loads, not a lock: a
// concurrent operation may change the answer before the caller acts on
// it, so Detached is a best-effort probe, not a synchronizing operation.
func (n *Node) Detached() bool {
	return n.loadPrev() == n && n.loadNext() == n
}

// Next returns n's current successor: n itself for a detached node or an
// empty head, the head for the last element, and nil if n.next is busy
// (or is the nil terminator Behead leaves on a chain's last element).
// Like Detached, this is a plain load: it observes a momentarily-
// consistent neighbor, not a lock.
func (n *Node) Next() *Node {
	if next := n.loadNext(); !isBusy(next) {
		return next
	}
	return nil
}

// Prev mirrors Next.
func (n *Node) Prev() *Node {
	if prev := n.loadPrev(); !isBusy(prev) {
		return prev
	}
	return nil
}

// Entry is a convenience generic payload carrier. Because Node is
// embedded as Entry's first field, a *Node known to be the Node field of
// some *Entry[T] can be recovered with PayloadOf via the same
// fixed-offset adjustment that embedding gives container/list-style
// intrusive structures in the standard library -- the address of the
// embedded Node and the address of the enclosing Entry coincide.
type Entry[T any] struct {
	Node
	Value T
}

// NewEntry allocates a detached Entry wrapping v.
func NewEntry[T any](v T) *Entry[T] {
	e := &Entry[T]{Value: v}
	e.Node.storePrev(&e.Node)
	e.Node.storeNext(&e.Node)
	return e
}

// PayloadOf recovers the *Entry[T] whose Node field is n. The caller
// must know that n really was obtained from an Entry[T]; passing a Node
// that is a bare list head, or the embedded Node of some other type, is
// a contract violation.
func PayloadOf[T any](n *Node) *Entry[T] {
	return (*Entry[T])(unsafe.Pointer(n))
}

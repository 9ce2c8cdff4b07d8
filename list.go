package ilist

// This file implements the composite list operations: Append,
// Insert, TryAppend, TryInsert, Delete, Pop, and Behead. Each is a loop
// of "attempt the link-primitive acquisition, and on failure back off
// and retry" -- contention is never surfaced to the caller, only latency
// is.

// Append splices e immediately before l (tail-append, when l is used as
// a head). e is trusted: the caller must own it and guarantee no other
// thread can observe or mutate it concurrently, but e may be in any
// state (linked elsewhere, detached, freshly allocated) -- Append
// overwrites its fields unconditionally. Use TryAppend if e might be
// concurrently shared.
func Append(l, e *Node, opts ...Option) {
	cfg := newOpConfig(opts...)
	bo := NewBackoff(cfg.policy)
	bo.Reset()
	for {
		t, ok := lockPrevLink(l)
		if !ok {
			bo.Wait()
			continue
		}
		e.storePrev(t)
		e.storeNext(l)
		t.storeNext(e)
		l.storePrev(e)
		return
	}
}

// Insert splices e immediately after l (head-insert, when l is used as a
// head). Like Append, e is trusted.
func Insert(l, e *Node, opts ...Option) {
	cfg := newOpConfig(opts...)
	bo := NewBackoff(cfg.policy)
	bo.Reset()
	for {
		n, ok := lockNextLink(l)
		if !ok {
			bo.Wait()
			continue
		}
		e.storeNext(n)
		e.storePrev(l)
		l.storeNext(e)
		n.storePrev(e)
		return
	}
}

// TryAppend is the non-trusting counterpart of Append: it first attempts
// to atomically transition e from detached to fully-locked, and aborts
// returning false if e was not detached (e.g. it is already linked
// somewhere, possibly concurrently). On success it splices e before l
// exactly as Append does and returns true.
func TryAppend(l, e *Node, opts ...Option) bool {
	cfg := newOpConfig(opts...)
	bo := NewBackoff(cfg.policy)

	bo.Reset()
	var prevWas, nextWas *Node
	for {
		p, n, ok := lockElem(e)
		if ok {
			prevWas, nextWas = p, n
			break
		}
		bo.Wait()
	}
	if prevWas != e || nextWas != e {
		unlockElem(e, prevWas, nextWas)
		return false
	}

	bo.Reset()
	for {
		t, ok := lockPrevLink(l)
		if !ok {
			bo.Wait()
			continue
		}
		e.storePrev(t)
		e.storeNext(l)
		t.storeNext(e)
		l.storePrev(e)
		return true
	}
}

// TryInsert is the non-trusting counterpart of Insert.
func TryInsert(l, e *Node, opts ...Option) bool {
	cfg := newOpConfig(opts...)
	bo := NewBackoff(cfg.policy)

	bo.Reset()
	var prevWas, nextWas *Node
	for {
		p, n, ok := lockElem(e)
		if ok {
			prevWas, nextWas = p, n
			break
		}
		bo.Wait()
	}
	if prevWas != e || nextWas != e {
		unlockElem(e, prevWas, nextWas)
		return false
	}

	bo.Reset()
	for {
		n, ok := lockNextLink(l)
		if !ok {
			bo.Wait()
			continue
		}
		e.storeNext(n)
		e.storePrev(l)
		l.storeNext(e)
		n.storePrev(e)
		return true
	}
}

// Delete removes e from whatever list it belongs to, leaving it
// detached. It returns true if e was linked, false if it was already
// detached (detected by observing a self-reference during the lock
// attempt, per lockFull's doc comment); in the false case e is left
// exactly as it was. Delete takes no head argument: it locates e's
// neighbors by locking outward from e itself, so it is safe to call
// concurrently with operations elsewhere in the same list, including
// other Deletes of different nodes.
func Delete(e *Node, opts ...Option) bool {
	cfg := newOpConfig(opts...)
	bo := NewBackoff(cfg.policy)
	bo.Reset()
	for {
		a, c, ok := lockFull(e)
		if !ok {
			bo.Wait()
			continue
		}
		if a == e {
			// e was already detached; lockFull's aliasing gave us
			// (e, e) rather than real neighbors. Restore the self-loop
			// and report the no-op.
			unlockSelf(e)
			return false
		}
		unlockLink(a, c)
		unlockSelf(e)
		return true
	}
}

// Pop removes and returns l's first element, or nil if l (used as a
// head) is empty.
func Pop(l *Node, opts ...Option) *Node {
	cfg := newOpConfig(opts...)
	bo := NewBackoff(cfg.policy)
	bo.Reset()
	for {
		first, ok := lockNextLink(l)
		if !ok {
			bo.Wait()
			continue
		}
		if first == l {
			// Empty: l.next and l.prev (aliased via first == l) are
			// both busy now; restore both to the empty invariant.
			l.storeNext(l)
			l.storePrev(l)
			return nil
		}
		second, ok := lockNextLink(first)
		if !ok {
			unlockNextLink(l, first)
			bo.Wait()
			continue
		}
		l.storeNext(second)
		second.storePrev(l)
		unlockSelf(first)
		return first
	}
}

// Behead detaches the entire chain of elements following l, leaving l
// empty, and returns the detached chain or nil if l was already empty.
// The returned chain is not circular: by convention chain.prev points to
// the former last element (so both ends of the chain are reachable in
// O(1) without walking it), and the former last element's next field is
// nil, a plain Go nil rather than either BUSY or a self-reference,
// marking the true end.
//
// Behead locks only l's own two fields (via lockElem), which makes it
// safe against concurrent head-local operations -- Append and Insert
// both must acquire one of l's fields too, so they simply back off and
// retry until Behead finishes; Pop likewise starts by acquiring l.next
// and waits the same way. It is NOT safe against a concurrent Delete of
// the chain's first or last element: Delete swaps first.prev (or
// last.next) to busy before it ever reaches l, and restores it on
// rollback, and those swaps and restores race with Behead's direct
// (non-swapping) writes to first.prev/last.next. So Behead is only safe
// against head-local operations, never against concurrent Deletes.
func Behead(l *Node, opts ...Option) *Node {
	cfg := newOpConfig(opts...)
	bo := NewBackoff(cfg.policy)
	bo.Reset()
	for {
		lastWas, firstWas, ok := lockElem(l)
		if !ok {
			bo.Wait()
			continue
		}
		if firstWas == l {
			l.storePrev(l)
			l.storeNext(l)
			return nil
		}
		first, last := firstWas, lastWas
		first.storePrev(last)
		last.storeNext(nil)
		l.storePrev(l)
		l.storeNext(l)
		return first
	}
}

package ilist

// This file implements the link primitives: the atomic-exchange
// acquisitions and their rollback counterparts that every composite
// operation and iterator in list.go and iterator.go is built from. None
// of these functions retry or sleep -- a primitive either succeeds
// (having swapped every field it needed to busy) or fails having rolled
// back anything it already swapped, leaving the node graph exactly as it
// found it. Retrying with back-off is the caller's job.

// lockNextLink acquires the link that starts at a.next: A -> B. On
// success a.next and b.prev both hold busy, and the prior live value of
// b.prev (namely a) is implied but not separately returned -- callers
// that need it already have a in hand.
//
// If a is itself the list head and the list is empty, b comes back equal
// to a; this is not a special case for lockNextLink itself (a.next and
// b.prev are still two distinct fields, even when a == b), but callers
// like Pop and the iterators treat b == head as "list exhausted".
func lockNextLink(a *Node) (b *Node, ok bool) {
	b = a.swapNext(busyNode)
	if isBusy(b) {
		return nil, false
	}
	prevWas := b.swapPrev(busyNode)
	if isBusy(prevWas) {
		a.storeNext(b)
		return nil, false
	}
	return b, true
}

// unlockNextLink undoes a successful lockNextLink(a) that returned b,
// restoring the ordinary A -> B link.
func unlockNextLink(a, b *Node) {
	a.storeNext(b)
	b.storePrev(a)
}

// lockPrevLink acquires the link that ends at a.prev: P -> A. It is the
// mirror image of lockNextLink, operating on a.prev and the resulting
// predecessor's next field.
func lockPrevLink(a *Node) (p *Node, ok bool) {
	p = a.swapPrev(busyNode)
	if isBusy(p) {
		return nil, false
	}
	nextWas := p.swapNext(busyNode)
	if isBusy(nextWas) {
		a.storePrev(p)
		return nil, false
	}
	return p, true
}

// unlockPrevLink undoes a successful lockPrevLink(a) that returned p.
func unlockPrevLink(a, p *Node) {
	a.storePrev(p)
	p.storeNext(a)
}

// tryLockPrev is a single attempt at lockPrevLink with no internal
// retry, which is already exactly what lockPrevLink does. It exists as
// a distinct name so call sites that want the "try" framing -- never
// retrying -- read that way, rather than relying on every caller
// independently deciding not to loop.
func tryLockPrev(a *Node) (p *Node, ok bool) {
	return lockPrevLink(a)
}

// lockElem acquires e itself without touching its neighbors' fields: it
// swaps e.next and e.prev to busy and hands back the values they held,
// which the caller must eventually feed back to unlockElem (to restore
// e unchanged) or otherwise account for. e's neighbors remain completely
// unaffected and can still be reached and mutated by other threads; only
// e is isolated for observation.
func lockElem(e *Node) (prevWas, nextWas *Node, ok bool) {
	nextWas = e.swapNext(busyNode)
	if isBusy(nextWas) {
		return nil, nil, false
	}
	prevWas = e.swapPrev(busyNode)
	if isBusy(prevWas) {
		e.storeNext(nextWas)
		return nil, nil, false
	}
	return prevWas, nextWas, true
}

// unlockElem restores e's fields to the values saved by a successful
// lockElem(e).
func unlockElem(e *Node, prevWas, nextWas *Node) {
	e.storePrev(prevWas)
	e.storeNext(nextWas)
}

// unlockSelf marks e as detached: a singleton self-loop.
func unlockSelf(e *Node) {
	e.storePrev(e)
	e.storeNext(e)
}

// lockFull acquires e and both of its adjacent links in one composite
// step, returning e's predecessor a and successor c. Afterwards e.prev
// and e.next both hold busy, and so do a.next and c.prev.
//
// If e was already detached (a self-loop) at the moment of the first
// swap, a comes back equal to e: because e.prev and e.next are the same
// node's two distinct fields, acquiring the "incoming" half of the lock
// (e.prev) and then discovering its predecessor is e itself means the
// very next step -- locking the "outgoing" half -- is locking e.next,
// which the aliasing has already touched. lockFull recognizes this and
// returns (e, e, true) without a second round-trip through the general
// path; callers that care about distinguishing "already detached" from
// "really spliced out of a multi-node list" compare a (or c) against e.
func lockFull(e *Node) (a, c *Node, ok bool) {
	a = e.swapPrev(busyNode)
	if isBusy(a) {
		return nil, nil, false
	}
	if a == e {
		c = e.swapNext(busyNode)
		if isBusy(c) {
			// Someone else is concurrently touching e's outgoing side
			// (e.g. racing us into the same detached node); roll back.
			e.storePrev(a)
			return nil, nil, false
		}
		return a, c, true
	}

	aNextWas := a.swapNext(busyNode)
	if isBusy(aNextWas) {
		e.storePrev(a)
		return nil, nil, false
	}

	c = e.swapNext(busyNode)
	if isBusy(c) {
		a.storeNext(e)
		e.storePrev(a)
		return nil, nil, false
	}

	cPrevWas := c.swapPrev(busyNode)
	if isBusy(cPrevWas) {
		e.storeNext(c)
		a.storeNext(e)
		e.storePrev(a)
		return nil, nil, false
	}

	return a, c, true
}

// unlockFull reattaches e between a and c exactly as lockFull left them,
// releasing all three nodes back to the live state.
func unlockFull(e, a, c *Node) {
	a.storeNext(e)
	e.storePrev(a)
	e.storeNext(c)
	c.storePrev(e)
}

// unlockLink reconnects a directly to c, bypassing whatever was locked
// between them. This is the mechanism that effectively deletes a node
// that lockFull isolated: the caller still holds that node fully locked
// (both fields busy) after unlockLink runs, and is expected to call
// unlockSelf on it if it intends to reuse the node.
func unlockLink(a, c *Node) {
	a.storeNext(c)
	c.storePrev(a)
}

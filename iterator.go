package ilist

// This file implements the two iteration styles, ForEachLocked and
// ForEachUnlocked. Both are structured as a per-step loop whose body is
// an inner retry loop (acquire the current step, back off and retry on
// contention) followed by a "run the body, then clean up" phase, so
// that every path out of a step -- falling through to the
// next node, the body asking to stop, or the walk reaching the head
// again -- passes through exactly one cleanup. Go's lack of a non-local
// jump out of a closure is what makes "the body must not jump out"
// enforceable here: the only way out of body is returning an Action, and
// every Action is handled by the same cleanup code.

// Action tells ForEachLocked/ForEachUnlocked what to do with the current
// item once the body returns.
type Action int

const (
	// Continue reattaches the item between its former neighbors (for
	// ForEachUnlocked too, overwriting its prev/next fields) and advances
	// to the next one.
	Continue Action = iota
	// Remove splices the item out of the list instead of reattaching
	// it, then advances. For ForEachLocked the item is left fully
	// locked (both fields busy) rather than detached -- call
	// (*Node).Unlock on it from the body, or immediately after the
	// loop, if it is to be reused. For ForEachUnlocked the item is
	// already detached by the time the body runs, so Remove need only
	// close the gap in the list; if the body has moved the item onto
	// another list, it must also return Remove, since there is no
	// longer a "this node" to reattach into the old gap.
	Remove
	// Stop reattaches the current item exactly as Continue does, then
	// ends the walk without visiting any further elements.
	Stop
)

// LinkEnds identifies the neighbors of the item an iterator body is
// currently looking at: the node that would become the item's
// predecessor again on a plain Continue, and the node the walk moves on
// to next after either Continue or Remove.
type LinkEnds struct {
	Prev, Next *Node
}

// Unlock releases a Node that ForEachLocked left fully locked after a
// Remove action, marking it detached so it may be reused.
func (n *Node) Unlock() {
	unlockSelf(n)
}

// ForEachLocked walks the list headed by l, calling body once for every
// live element with that element held fully locked (both its prev and
// next fields busy) for the duration of the call. back identifies the
// element's current neighbors. The body may read and write the element
// freely -- nothing else can touch it until the body returns -- but must
// not retain item or back past the call, since both are only meaningful
// while the element is locked.
//
// Operations elsewhere in the list proceed concurrently and unimpeded;
// an operation that would need to touch back.Prev, item, or back.Next
// simply backs off and retries until this step's cleanup runs.
func ForEachLocked(l *Node, body func(item *Node, back LinkEnds) Action, opts ...Option) {
	cfg := newOpConfig(opts...)
	bo := NewBackoff(cfg.policy)

	prev := l
	for {
		bo.Reset()
		var item, next *Node
		for {
			a, ok := lockNextLink(prev)
			if !ok {
				bo.Wait()
				continue
			}
			if a == l {
				// Reached the head again: nothing more to visit.
				// Restore the link we just locked and return.
				unlockNextLink(prev, a)
				return
			}
			b, ok := lockNextLink(a)
			if !ok {
				unlockNextLink(prev, a)
				bo.Wait()
				continue
			}
			item, next = a, b
			break
		}

		back := LinkEnds{Prev: prev, Next: next}
		action := body(item, back)

		switch action {
		case Remove:
			unlockLink(prev, next)
			// item stays fully locked; caller may call item.Unlock().
		default:
			unlockFull(item, prev, next)
			prev = item
		}

		if action == Stop {
			return
		}
	}
}

// ForEachUnlocked walks the list headed by l like ForEachLocked, but
// instead of holding item fully locked, it detaches item (a self-loop)
// for the duration of the body call; only item's former neighbors carry
// a busy marker facing the gap where item used to be. This lets the body
// safely move item onto another list (it is guaranteed unreachable from
// anywhere else while detached) at the cost of not being able to safely
// read item's own payload against another holder's concurrent write --
// that coordination, if needed, is the caller's responsibility.
func ForEachUnlocked(l *Node, body func(item *Node, back LinkEnds) Action, opts ...Option) {
	cfg := newOpConfig(opts...)
	bo := NewBackoff(cfg.policy)

	prev := l
	for {
		bo.Reset()
		var item, next *Node
		for {
			a, ok := lockNextLink(prev)
			if !ok {
				bo.Wait()
				continue
			}
			if a == l {
				unlockNextLink(prev, a)
				return
			}
			b, ok := lockNextLink(a)
			if !ok {
				unlockNextLink(prev, a)
				bo.Wait()
				continue
			}
			item, next = a, b
			break
		}
		unlockSelf(item)

		back := LinkEnds{Prev: prev, Next: next}
		action := body(item, back)

		switch action {
		case Remove:
			unlockLink(prev, next)
		default:
			prev.storeNext(item)
			item.storePrev(prev)
			item.storeNext(next)
			next.storePrev(item)
			prev = item
		}

		if action == Stop {
			return
		}
	}
}

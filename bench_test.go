package ilist

import (
	"math/rand"
	"sync"
	"testing"
)

// peerList is a single-mutex doubly-linked list used only as a benchmark
// comparison point for the link-locking list above: fake head/tail
// sentinels so every splice is branch-free. It holds int values directly
// rather than intrusive nodes, since its only job here is to cost out "a
// lock around the whole list" against "a lock per edge".
type peerNode struct {
	prev, next *peerNode
	value      int
}

type peerList struct {
	mu             sync.Mutex
	fakeHead, fakeTail *peerNode
}

func newPeerList() *peerList {
	h, t := &peerNode{}, &peerNode{}
	peerLink(h, t)
	return &peerList{fakeHead: h, fakeTail: t}
}

func peerLink(a, b *peerNode) {
	a.next, b.prev = b, a
}

func (l *peerList) pushBack(v int) *peerNode {
	n := &peerNode{value: v}
	l.mu.Lock()
	peerLink(l.fakeTail.prev, n)
	peerLink(n, l.fakeTail)
	l.mu.Unlock()
	return n
}

func (l *peerList) remove(n *peerNode) {
	l.mu.Lock()
	peerLink(n.prev, n.next)
	l.mu.Unlock()
}

func (l *peerList) popFront() (*peerNode, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.fakeHead.next
	if n == l.fakeTail {
		return nil, false
	}
	peerLink(l.fakeHead, n.next)
	return n, true
}

// benchLogger narrates which workload is running, the same role
// go-ilock's benchmark handlers give their own discarded log.Logger.
// Swap in NewLogger(os.Stderr) to watch a specific workload's progress.
var benchLogger = NewDiscardLogger()

// benchWorkloads sweeps concurrency and write ratio, comparing
// link-locked append/pop against the same workload run through a single
// global mutex.
var benchWorkloads = []struct {
	name        string
	concurrency int
	writeRatio  float32
}{
	{"Serial", 1, 0.10},
	{"SerialHeavyWrites", 1, 0.50},
	{"LowConcurrency", 2, 0.10},
	{"MediumConcurrency", 10, 0.10},
	{"HighConcurrency", 20, 0.10},
	{"HighConcurrencyHeavyWrites", 20, 0.50},
}

// runIlistWorkload has b.N operations spread over `concurrency` goroutines;
// each operation is either an Append (write) or a Pop (the read-analog
// here, since the list has no pure read op worth timing on its own).
func runIlistWorkload(b *testing.B, concurrency int, writeRatio float32) {
	l := &Node{}
	NewHead(l)
	var wg sync.WaitGroup
	opsPerGoroutine := (b.N + concurrency - 1) / concurrency
	benchLogger.Infof("ilist workload: concurrency=%d writeRatio=%.2f ops=%d", concurrency, writeRatio, b.N)

	b.ResetTimer()
	for g := 0; g < concurrency; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				if rand.Float32() < writeRatio {
					e := NewEntry(i)
					Append(l, &e.Node, concurrencyBackoff())
				} else {
					Pop(l, concurrencyBackoff())
				}
			}
		}()
	}
	wg.Wait()
}

func runPeerWorkload(b *testing.B, concurrency int, writeRatio float32) {
	l := newPeerList()
	var wg sync.WaitGroup
	opsPerGoroutine := (b.N + concurrency - 1) / concurrency
	benchLogger.Infof("peer workload: concurrency=%d writeRatio=%.2f ops=%d", concurrency, writeRatio, b.N)

	b.ResetTimer()
	for g := 0; g < concurrency; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				if rand.Float32() < writeRatio {
					l.pushBack(i)
				} else {
					l.popFront()
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkIlist(b *testing.B) {
	for _, w := range benchWorkloads {
		w := w
		b.Run(w.name, func(b *testing.B) {
			runIlistWorkload(b, w.concurrency, w.writeRatio)
		})
	}
}

func BenchmarkPeerMutexList(b *testing.B) {
	for _, w := range benchWorkloads {
		w := w
		b.Run(w.name, func(b *testing.B) {
			runPeerWorkload(b, w.concurrency, w.writeRatio)
		})
	}
}

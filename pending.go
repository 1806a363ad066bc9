package gdbmi

import (
	"fmt"
	"sync"

	"github.com/dshills/gdbmi/mi"
)

// pendingTable tracks in-flight commands by token. Each registered
// token is resolved exactly once: either with the result record that
// carries it, or by drain when the transport dies.
type pendingTable struct {
	mu      sync.Mutex
	waiters map[uint64]chan *mi.Result
	drained bool
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiters: make(map[uint64]chan *mi.Result)}
}

// register adds a waiter for token. The returned channel receives the
// result record, or is closed without a value if the transport dies
// first. Tokens come from a monotonic counter, a duplicate means the
// engine itself is broken.
func (p *pendingTable) register(token uint64) (<-chan *mi.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.drained {
		return nil, ErrTransportClosed
	}
	if _, exists := p.waiters[token]; exists {
		panic(fmt.Sprintf("pending: duplicate token %d", token))
	}

	ch := make(chan *mi.Result, 1)
	p.waiters[token] = ch
	return ch, nil
}

// resolve delivers a result to the waiter for its token. Returns false
// when no waiter is registered, the record is then a protocol anomaly.
func (p *pendingTable) resolve(token uint64, res *mi.Result) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.waiters[token]
	if !ok {
		return false
	}
	delete(p.waiters, token)
	ch <- res
	close(ch)
	return true
}

// discard removes a waiter whose command never reached the wire.
func (p *pendingTable) discard(token uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.waiters, token)
}

// drain fails every outstanding waiter and rejects future registers.
func (p *pendingTable) drain() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.drained = true
	for token, ch := range p.waiters {
		close(ch)
		delete(p.waiters, token)
	}
}

// size returns the number of in-flight commands.
func (p *pendingTable) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}

package dbpg

import "sync"

// balancer hands out slave indexes round-robin.
type balancer struct {
	idx int
	max int

	mu sync.Mutex
}

func newBalancer(max int) *balancer {
	return &balancer{max: max}
}

func (b *balancer) index() (res int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res = b.idx

	if b.idx == b.max-1 {
		b.idx = 0
	} else {
		b.idx++
	}

	return
}

package energy

import (
	"sync"
)

// Pool is a player's spendable energy. Max grows by one each of the owner's
// turns up to Cap; Current is refilled to Max at the same time.
type Pool struct {
	mu sync.RWMutex

	current int
	max     int
	cap     int
}

// NewPool creates an empty pool whose ceiling never exceeds limit.
func NewPool(limit int) *Pool {
	if limit < 0 {
		limit = 0
	}
	return &Pool{cap: limit}
}

// Refresh grows the ceiling by one (capped) and refills the pool.
// It returns the new ceiling.
func (p *Pool) Refresh() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.max < p.cap {
		p.max++
	}
	p.current = p.max
	return p.max
}

// Current returns the spendable amount.
func (p *Pool) Current() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Max returns the current ceiling.
func (p *Pool) Max() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.max
}

// Cap returns the configured limit for the ceiling.
func (p *Pool) Cap() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cap
}

// CanAfford reports whether cost can be paid.
func (p *Pool) CanAfford(cost int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cost <= p.current
}

// Spend attempts to pay cost from the pool.
// Returns true if successful, false if insufficient energy.
func (p *Pool) Spend(cost int) bool {
	if cost <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current < cost {
		return false
	}
	p.current -= cost
	return true
}

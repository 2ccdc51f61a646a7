package energy

import (
	"testing"
)

func TestPool_RefreshGrowsAndRefills(t *testing.T) {
	pool := NewPool(3)

	for want := 1; want <= 3; want++ {
		if got := pool.Refresh(); got != want {
			t.Errorf("Expected max %d, got %d", want, got)
		}
		if pool.Current() != pool.Max() {
			t.Errorf("Expected current %d to equal max %d", pool.Current(), pool.Max())
		}
	}

	// Ceiling stays at the cap
	if got := pool.Refresh(); got != 3 {
		t.Errorf("Expected capped max 3, got %d", got)
	}
	if pool.Cap() != 3 {
		t.Errorf("Expected cap 3, got %d", pool.Cap())
	}
}

func TestPool_Spend(t *testing.T) {
	pool := NewPool(10)
	pool.Refresh()
	pool.Refresh()

	if !pool.CanAfford(2) {
		t.Error("Expected to afford 2")
	}
	if pool.CanAfford(3) {
		t.Error("Expected not to afford 3")
	}

	if !pool.Spend(1) {
		t.Error("Expected to spend 1")
	}
	if pool.Current() != 1 {
		t.Errorf("Expected 1 remaining, got %d", pool.Current())
	}

	// Try to spend more than available
	if pool.Spend(2) {
		t.Error("Expected spend of 2 to fail")
	}
	if pool.Current() != 1 {
		t.Errorf("Failed spend should not change the pool, got %d", pool.Current())
	}

	if !pool.Spend(0) {
		t.Error("Spending nothing always succeeds")
	}

	// Refill restores the full ceiling
	pool.Refresh()
	if pool.Current() != 3 {
		t.Errorf("Expected 3 after refresh, got %d", pool.Current())
	}
}

func TestPool_NegativeCap(t *testing.T) {
	pool := NewPool(-1)
	if got := pool.Refresh(); got != 0 {
		t.Errorf("Expected max 0, got %d", got)
	}
}

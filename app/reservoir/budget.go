package reservoir

// Budget caps the total number of items ingested per cycle, independent of
// per-provider limits. Exhaustion is a normal termination condition: excess
// items are dropped, not queued.
type Budget struct {
	total     int
	remaining int
}

func NewBudget(total int) *Budget {
	return &Budget{total: total, remaining: total}
}

// Take grants up to n units and returns how many were actually granted.
func (b *Budget) Take(n int) int {
	if n <= 0 || b.remaining <= 0 {
		return 0
	}
	if n > b.remaining {
		n = b.remaining
	}
	b.remaining -= n
	return n
}

func (b *Budget) Remaining() int {
	return b.remaining
}

func (b *Budget) Exhausted() bool {
	return b.remaining <= 0
}

package memory

import "sync/atomic"

// SlotCounter owns a campaign's remaining slot count. It only exposes
// atomic operations; the count never goes negative.
type SlotCounter struct {
	n atomic.Int64
}

// NewSlotCounter returns a counter holding n slots.
func NewSlotCounter(n int64) *SlotCounter {
	s := &SlotCounter{}
	if n > 0 {
		s.n.Store(n)
	}
	return s
}

// TryTake removes one slot. It returns false when none are left.
func (s *SlotCounter) TryTake() bool {
	for {
		cur := s.n.Load()
		if cur <= 0 {
			return false
		}
		if s.n.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// Add returns n slots to the counter. Non-positive n is ignored.
func (s *SlotCounter) Add(n int64) {
	if n > 0 {
		s.n.Add(n)
	}
}

// Remaining is the current number of slots.
func (s *SlotCounter) Remaining() int64 {
	return s.n.Load()
}

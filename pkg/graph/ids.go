package graph

import (
	"math"
	"strconv"
)

// IDAllocator hands out fresh numeric node identifiers.
//
// The counter is seeded from the largest numeric suffix among existing ids,
// never from the number of nodes, so removing nodes or loading a document
// with sparse ids cannot lead to a collision.
type IDAllocator struct {
	next int
}

// NewIDAllocator returns an allocator whose first id is "1".
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns a fresh id and advances the counter. The counter stops at
// math.MaxInt, so an exhausted allocator repeats its last id instead of
// wrapping around to ids already in use.
func (a *IDAllocator) Next() string {
	id := a.Peek()
	if a.next < math.MaxInt {
		a.next++
	}
	return id
}

// Peek returns the id Next would return without advancing.
func (a *IDAllocator) Peek() string {
	if a.next < 1 {
		a.next = 1
	}
	return strconv.Itoa(a.next)
}

// Observe moves the counter past id if id carries a numeric suffix at or
// beyond the current value. A suffix of math.MaxInt has no successor and is
// ignored.
func (a *IDAllocator) Observe(id string) {
	if n, ok := NumericSuffix(id); ok && n >= a.next && n < math.MaxInt {
		a.next = n + 1
	}
}

// Reseed resets the counter to max(numeric suffix of ids) + 1, minimum 1.
func (a *IDAllocator) Reseed(ids []string) {
	a.next = 1
	for _, id := range ids {
		a.Observe(id)
	}
}

// NumericSuffix parses the trailing run of ASCII digits in id.
// "12" yields 12, "node-7" yields 7, "abc" yields false.
func NumericSuffix(id string) (int, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	digits := id[i:]
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Overflowing suffixes are treated as non-numeric.
		return 0, false
	}
	return n, true
}

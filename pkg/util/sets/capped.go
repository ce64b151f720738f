// Package sets provides small generic set types.
package sets

// CappedSet is a set that stops growing once it holds cap items.
// It is not safe for concurrent use.
type CappedSet[T comparable] struct {
	items map[T]struct{}
	cap   int
}

func NewCappedSet[T comparable](cap int) *CappedSet[T] {
	return &CappedSet[T]{
		items: make(map[T]struct{}),
		cap:   cap,
	}
}

func (s *CappedSet[T]) Len() int {
	return len(s.items)
}

// Add adds item and reports whether it was newly added.
// Items are dropped when the set is full.
func (s *CappedSet[T]) Add(item T) bool {
	if _, ok := s.items[item]; ok {
		return false
	}
	if len(s.items) >= s.cap {
		return false
	}
	s.items[item] = struct{}{}
	return true
}

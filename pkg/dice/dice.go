// Package dice provides a mutable set with constant-time insertion, removal,
// membership tests and uniform random sampling.
package dice

// Source is the randomness a Set samples with; *core.RNG satisfies it.
type Source interface {
	IntN(n int) int
}

// Set keeps its elements densely packed in a slice and remembers each
// element's slot, so removal swaps the last element into the hole.
type Set[T comparable] struct {
	elements []T
	slot     map[T]int
}

// New returns an empty set.
func New[T comparable]() *Set[T] {
	return &Set[T]{slot: make(map[T]int)}
}

// Insert adds v. Inserting an element twice is a no-op.
func (s *Set[T]) Insert(v T) {
	if _, ok := s.slot[v]; ok {
		return
	}
	s.slot[v] = len(s.elements)
	s.elements = append(s.elements, v)
}

// Remove deletes v if present.
func (s *Set[T]) Remove(v T) {
	i, ok := s.slot[v]
	if !ok {
		return
	}
	last := len(s.elements) - 1
	if i != last {
		moved := s.elements[last]
		s.elements[i] = moved
		s.slot[moved] = i
	}
	s.elements = s.elements[:last]
	delete(s.slot, v)
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.slot[v]
	return ok
}

// Len returns the number of elements.
func (s *Set[T]) Len() int { return len(s.elements) }

// Sample returns a uniformly chosen element. It panics on an empty set.
func (s *Set[T]) Sample(src Source) T {
	if len(s.elements) == 0 {
		panic("dice: Sample on empty set")
	}
	return s.elements[src.IntN(len(s.elements))]
}

// Elements exposes the packed elements in slot order. Callers must not
// modify the slice, and it is invalidated by the next Insert or Remove.
func (s *Set[T]) Elements() []T { return s.elements }

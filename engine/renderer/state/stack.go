package state

// Stack remembers the current value of one piece of pipeline state and forwards
// only real transitions to the graphics context.
// The bottom slot is a permanent sentinel, so the stack is never empty.
type Stack[T any] struct {
	name    string
	values  []T
	equal   func(a, b T) bool
	apply   func(prev, next T)
	dirty   bool
	applied int
	skipped int
}

// NewStack creates a Stack holding only the sentinel value.
// The sentinel should describe the context's state at creation time; apply is
// not invoked for it.
//
// Parameters:
//   - name: label used in error messages
//   - sentinel: the initial, permanent bottom value
//   - equal: structural equality between two values
//   - apply: side effect emitting the transition from prev to next
//
// Returns:
//   - *Stack[T]: the new stack
func NewStack[T any](name string, sentinel T, equal func(a, b T) bool, apply func(prev, next T)) *Stack[T] {
	return &Stack[T]{
		name:   name,
		values: []T{sentinel},
		equal:  equal,
		apply:  apply,
	}
}

// NewComparableStack is NewStack for comparable values, using == as equality.
func NewComparableStack[T comparable](name string, sentinel T, apply func(prev, next T)) *Stack[T] {
	return NewStack(name, sentinel, func(a, b T) bool { return a == b }, apply)
}

// Push makes v the active value, applying it if it differs from the current top.
func (s *Stack[T]) Push(v T) {
	s.transition(s.Peek(), v)
	s.values = append(s.values, v)
}

// Pop removes the active value and re-applies the newly exposed one if it differs.
//
// Returns:
//   - T: the removed value
//   - error: a *UsageError if only the sentinel is left
func (s *Stack[T]) Pop() (T, error) {
	n := len(s.values)
	if n == 1 {
		var zero T
		return zero, &UsageError{Op: "pop " + s.name, Reason: "stack underflow"}
	}
	removed := s.values[n-1]
	s.values = s.values[:n-1]
	s.transition(removed, s.values[n-2])
	return removed, nil
}

// Set replaces the active value in place, applying it if it differs.
// Unlike Push it never grows the stack, so it is used for state that is
// simply overwritten, including the sentinel slot.
func (s *Stack[T]) Set(v T) {
	s.transition(s.Peek(), v)
	s.values[len(s.values)-1] = v
}

// Peek returns the active value without side effects.
func (s *Stack[T]) Peek() T {
	return s.values[len(s.values)-1]
}

// Len returns the number of values including the sentinel.
func (s *Stack[T]) Len() int {
	return len(s.values)
}

// Invalidate forgets what the context holds, so the next transition always applies.
func (s *Stack[T]) Invalidate() {
	s.dirty = true
}

// Stats returns how many transitions were applied and how many were skipped as redundant.
func (s *Stack[T]) Stats() (applied, skipped int) {
	return s.applied, s.skipped
}

func (s *Stack[T]) transition(prev, next T) {
	if !s.dirty && s.equal(prev, next) {
		s.skipped++
		return
	}
	s.apply(prev, next)
	s.dirty = false
	s.applied++
}

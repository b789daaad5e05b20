// Package cached provides lazily computed, memoized values for expensive
// lookups that are stable once known (versions, discovered addresses,
// parsed credentials).
package cached

import "sync"

// Value computes its result on first use and returns the cached result,
// including a cached error, on every use after that. Safe for concurrent
// use.
type Value[T any] struct {
	once sync.Once
	fn   func() (T, error)
	v    T
	err  error
}

// New creates a lazy value from fn. fn runs at most once.
func New[T any](fn func() (T, error)) *Value[T] {
	return &Value[T]{fn: fn}
}

// Of creates a lazy value from a function that cannot fail.
func Of[T any](fn func() T) *Value[T] {
	return New(func() (T, error) { return fn(), nil })
}

// Get returns the computed value, running the function on the first call.
func (v *Value[T]) Get() (T, error) {
	v.once.Do(func() {
		v.v, v.err = v.fn()
		v.fn = nil
	})
	return v.v, v.err
}

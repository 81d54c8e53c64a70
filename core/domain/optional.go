package domain

// Optional wraps a value that may be absent. Unlike a pointer, an Optional
// distinguishes "leave unchanged" (absent) from "set to the zero value"
// (present), which is what partial updates need to express clearing a field.
// The zero Optional is absent.
type Optional[T any] struct {
	value T
	set   bool
}

// Set returns a present Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Value returns the held value, or the zero value when absent.
func (o Optional[T]) Value() T {
	return o.value
}

// Get returns the held value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

package delegated

// Outcome carries the result of a delegated call. The delegated tier never
// produces errors that propagate: a call either succeeded or was unavailable,
// and callers fall through to their own defaults on unavailability.
type Outcome[T any] struct {
	Value  T
	reason string
}

// Ok wraps a successful delegated result.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Unavailable marks a failed or disabled delegated call. The reason is for
// logs only and never surfaces to callers as an error.
func Unavailable[T any](reason string) Outcome[T] {
	return Outcome[T]{reason: reason}
}

// OK reports whether the call produced a usable value.
func (o Outcome[T]) OK() bool { return o.reason == "" }

// Reason returns why the call was unavailable, or "" on success.
func (o Outcome[T]) Reason() string { return o.reason }

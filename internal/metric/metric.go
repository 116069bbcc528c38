// Package metric provides a tagged present/unavailable wrapper for readings
// that may be missing on a given machine. Every value crossing the collector
// boundary is a Metric, so downstream code never guards against nil or
// sentinel values.
package metric

// Metric wraps a value of type T together with its availability. The zero
// value is Unavailable with an empty reason.
type Metric[T any] struct {
	value   T
	present bool
	reason  string
}

// Present wraps an available value.
func Present[T any](v T) Metric[T] {
	return Metric[T]{value: v, present: true}
}

// Unavailable marks a reading as missing, with a short human-readable reason.
func Unavailable[T any](reason string) Metric[T] {
	return Metric[T]{reason: reason}
}

// Get returns the value and whether it is present.
func (m Metric[T]) Get() (T, bool) {
	return m.value, m.present
}

// IsPresent reports whether the value is available.
func (m Metric[T]) IsPresent() bool { return m.present }

// Reason returns why the value is unavailable; empty when present.
func (m Metric[T]) Reason() string { return m.reason }

// Or returns the value when present, otherwise the fallback.
func (m Metric[T]) Or(fallback T) T {
	if m.present {
		return m.value
	}
	return fallback
}

// MustGet returns the value and panics if it is unavailable. Test helper.
func (m Metric[T]) MustGet() T {
	if !m.present {
		panic("metric: MustGet on unavailable value: " + m.reason)
	}
	return m.value
}

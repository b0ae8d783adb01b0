// Package progress defines the percentage sink used by long-running transforms.
package progress

// Func receives a completion percentage in [0, 100]. Calls are monotonically non-decreasing.
type Func func(percent int)

// Noop discards progress reports. Pass it instead of nil.
func Noop(int) {}

// OrNoop returns f, or Noop when f is nil.
func OrNoop(f Func) Func {
	if f == nil {
		return Noop
	}

	return f
}

// Scaled maps a sub-task's 0-100 progress into the [from, to] window of a parent reporter.
func Scaled(parent Func, from, to int) Func {
	parent = OrNoop(parent)

	return func(percent int) {
		percent = max(0, min(100, percent))
		parent(from + (to-from)*percent/100)
	}
}

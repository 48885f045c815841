package vals

// Range is a half-open interval of integers [Start, End).
type Range struct {
	Start, End int64
}

// Len returns the number of integers in the range.
func (r Range) Len() int64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Each calls f for every integer in the range until f returns false.
func (r Range) Each(f func(int64) bool) {
	for i := r.Start; i < r.End; i++ {
		if !f(i) {
			return
		}
	}
}

// Expand materializes the range as a list of ints.
func (r Range) Expand() *List {
	items := make([]Value, 0, r.Len())
	for i := r.Start; i < r.End; i++ {
		items = append(items, i)
	}
	return NewList(items...)
}

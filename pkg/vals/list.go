package vals

import "math"

// List is an immutable list of values.
type List struct {
	items []Value
}

// NewList builds a list from the given items. The slice is taken over by
// the list and must not be modified afterwards.
func NewList(items ...Value) *List {
	return &List{items: items}
}

// EmptyList is the list with no items.
var EmptyList = &List{}

func (l *List) Len() int { return len(l.items) }

// Index returns the i-th item. The index must be in bounds; use AsIndex to
// normalize first.
func (l *List) Index(i int) Value { return l.items[i] }

// Conj returns a new list with v appended.
func (l *List) Conj(v Value) *List {
	items := make([]Value, len(l.items)+1)
	copy(items, l.items)
	items[len(l.items)] = v
	return &List{items: items}
}

// Concat returns the concatenation of two lists.
func (l *List) Concat(other *List) *List {
	items := make([]Value, 0, len(l.items)+len(other.items))
	items = append(items, l.items...)
	items = append(items, other.items...)
	return &List{items: items}
}

// Each calls f for every item in order until f returns false.
func (l *List) Each(f func(Value) bool) {
	for _, v := range l.items {
		if !f(v) {
			return
		}
	}
}

// Contains reports whether the list has an item equal (coercively) to v.
func (l *List) Contains(v Value) bool {
	for _, item := range l.items {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

func (l *List) repeat(n int64) (*List, error) {
	if l.Len() == 0 || n <= 0 {
		return EmptyList, nil
	}
	if n > int64(math.MaxInt)/int64(len(l.items)) {
		return nil, &OverflowError{Op: "*"}
	}
	items := make([]Value, 0, int64(len(l.items))*n)
	for i := int64(0); i < n; i++ {
		items = append(items, l.items...)
	}
	return &List{items: items}, nil
}

package vals

// Map is a string-keyed map that preserves insertion order.
type Map struct {
	keys   []string
	index  map[string]int
	values []Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

func (m *Map) Len() int { return len(m.keys) }

// Get returns the value bound to key.
func (m *Map) Get(key string) (Value, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

// HasKey reports whether key is present.
func (m *Map) HasKey(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Set binds key to v, keeping the key's original position if it already
// exists. Set mutates in place: clone a shared map before calling it.
func (m *Map) Set(key string, v Value) {
	if i, ok := m.index[key]; ok {
		m.values[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, v)
}

// Clone returns a copy sharing no mutable state with the original.
func (m *Map) Clone() *Map {
	c := &Map{
		keys:   append([]string(nil), m.keys...),
		index:  make(map[string]int, len(m.index)),
		values: append([]Value(nil), m.values...),
	}
	for k, i := range m.index {
		c.index[k] = i
	}
	return c
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (m *Map) Keys() []string { return m.keys }

// Each calls f for every pair in insertion order until f returns false.
func (m *Map) Each(f func(key string, v Value) bool) {
	for i, k := range m.keys {
		if !f(k, m.values[i]) {
			return
		}
	}
}

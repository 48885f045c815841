package vals

// Iterate calls f for each element of an iterable value until f returns
// false: list items, range integers, map keys, table rows (as maps), and
// the bytes of a string as one-character strings.
func Iterate(v Value, f func(Value) bool) error {
	switch v := v.(type) {
	case *List:
		v.Each(f)
	case Range:
		v.Each(func(i int64) bool { return f(i) })
	case *Map:
		v.Each(func(key string, _ Value) bool { return f(key) })
	case *Table:
		for i := 0; i < v.Len(); i++ {
			if !f(v.Row(i)) {
				break
			}
		}
	case string:
		for _, r := range v {
			if !f(string(r)) {
				break
			}
		}
	default:
		return &ConversionError{From: Kind(v), To: "iterable"}
	}
	return nil
}

// Index resolves container[index]: list by position, map by string key,
// table by row position, range by offset, string by rune position, binary
// by byte position. Negative positions count from the end.
func Index(container, index Value) (Value, error) {
	switch c := container.(type) {
	case *List:
		i, err := AsIndex(index, c.Len())
		if err != nil {
			return nil, err
		}
		return c.Index(i), nil
	case *Map:
		key, ok := index.(string)
		if !ok {
			return nil, &ConversionError{From: Kind(index), To: "string"}
		}
		v, ok := c.Get(key)
		if !ok {
			return nil, &ColumnError{Name: key}
		}
		return v, nil
	case *Table:
		i, err := AsIndex(index, c.Len())
		if err != nil {
			return nil, err
		}
		return c.Row(i), nil
	case Range:
		i, err := AsIndex(index, int(c.Len()))
		if err != nil {
			return nil, err
		}
		return c.Start + int64(i), nil
	case string:
		runes := []rune(c)
		i, err := AsIndex(index, len(runes))
		if err != nil {
			return nil, err
		}
		return string(runes[i]), nil
	case Binary:
		i, err := AsIndex(index, len(c))
		if err != nil {
			return nil, err
		}
		return int64(c[i]), nil
	default:
		return nil, &ConversionError{From: Kind(container), To: "indexable"}
	}
}

// Column resolves container.name: map entry, table column, or a one-row
// lookup into a list of maps.
func Column(container Value, name string) (Value, error) {
	switch c := container.(type) {
	case *Map:
		v, ok := c.Get(name)
		if !ok {
			return nil, &ColumnError{Name: name}
		}
		return v, nil
	case *Table:
		return c.Column(name)
	default:
		return nil, &ConversionError{From: Kind(container), To: "map or table"}
	}
}

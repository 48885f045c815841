package vals

import "strconv"

// ToString converts a scalar value to its string form losslessly.
// Containers do not stringify implicitly; flattening a list is the caller's
// explicit choice via ToStrings.
func ToString(v Value) (string, error) {
	switch v := v.(type) {
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return formatFloat(v), nil
	case string:
		return v, nil
	default:
		return "", &ConversionError{From: Kind(v), To: "string"}
	}
}

// ToStrings appends the string forms of v to out, flattening lists
// recursively. Used for command argument expansion.
func ToStrings(v Value, out *[]string) error {
	if list, ok := v.(*List); ok {
		var err error
		list.Each(func(item Value) bool {
			err = ToStrings(item, out)
			return err == nil
		})
		return err
	}
	s, err := ToString(v)
	if err != nil {
		return &ConversionError{From: Kind(v), To: "string"}
	}
	*out = append(*out, s)
	return nil
}

// AsIndex converts v to a slice index for a container of the given length.
// Bool coerces to 0/1, and a negative index counts from the end.
func AsIndex(v Value, length int) (int, error) {
	var index int64
	switch v := v.(type) {
	case int64:
		index = v
	case bool:
		index = boolInt(v)
	default:
		return 0, &ConversionError{From: Kind(v), To: "int"}
	}
	if index < 0 {
		wrapped := int64(length) + index
		if wrapped < 0 {
			return 0, &IndexError{Index: index, Len: length}
		}
		return int(wrapped), nil
	}
	if index >= int64(length) {
		return 0, &IndexError{Index: index, Len: length}
	}
	return int(index), nil
}

// toInt coerces bool and int values to int64.
func toInt(v Value) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case bool:
		return boolInt(v), true
	}
	return 0, false
}

// toFloat coerces bool, int and float values to float64.
func toFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case bool:
		return boolFloat(v), true
	}
	return 0, false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func isScalar(v Value) bool {
	switch v.(type) {
	case bool, int64, float64, string:
		return true
	}
	return false
}

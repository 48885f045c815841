package eval

import (
	"strings"

	"github.com/krillsh/krill/pkg/vals"
)

// ValueStream is the input side of a pipeline stage: the values produced by
// the previous stage, consumed in order.
type ValueStream struct {
	values []vals.Value
	pos    int
}

// NewValueStream returns a stream over the given values.
func NewValueStream(values []vals.Value) *ValueStream {
	return &ValueStream{values: values}
}

// Next returns the next value. The second return is false at end of stream.
func (s *ValueStream) Next() (vals.Value, bool) {
	if s.pos >= len(s.values) {
		return nil, false
	}
	v := s.values[s.pos]
	s.pos++
	return v, true
}

// Len returns the number of values remaining.
func (s *ValueStream) Len() int { return len(s.values) - s.pos }

// All returns the remaining values without consuming them.
func (s *ValueStream) All() []vals.Value { return s.values[s.pos:] }

// String renders the remaining values for consumption by a byte-oriented
// reader, one value per line.
func (s *ValueStream) String() (string, error) {
	var b strings.Builder
	for _, v := range s.All() {
		str, err := vals.ToString(v)
		if err != nil {
			return "", err
		}
		b.WriteString(str)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// OutputStream collects the values a pipeline stage produces.
type OutputStream struct {
	values []vals.Value
}

// Push appends a value to the stream. Pushing Null is a no-op so that
// statements and value-less commands do not pollute pipelines.
func (s *OutputStream) Push(v vals.Value) {
	if v == nil {
		return
	}
	s.values = append(s.values, v)
}

// Values returns the collected values.
func (s *OutputStream) Values() []vals.Value { return s.values }

// Unpack collapses the stream into a single value: Null when empty, the
// element itself for one value, a List otherwise.
func (s *OutputStream) Unpack() vals.Value {
	switch len(s.values) {
	case 0:
		return nil
	case 1:
		return s.values[0]
	}
	return vals.NewList(s.values...)
}

// Stream reopens the collected values as an input stream.
func (s *OutputStream) Stream() *ValueStream {
	return NewValueStream(s.values)
}

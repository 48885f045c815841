package vals

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"math"
)

// Hash returns a hash of v consistent with EqualStrict: values that are
// strictly equal hash the same. Closures and other external kinds hash by
// identity, so two closures collide in a hashed container only when they
// are the same allocation.
func Hash(v Value) uint64 {
	h := fnv.New64a()
	hashInto(h, v)
	return h.Sum64()
}

func hashInto(h io.Writer, v Value) {
	writeString(h, Kind(v))
	switch v := v.(type) {
	case nil:
	case bool:
		writeUint64(h, uint64(boolInt(v)))
	case int64:
		writeUint64(h, uint64(v))
	case float64:
		writeUint64(h, math.Float64bits(v))
	case string:
		writeString(h, v)
	case *List:
		v.Each(func(item Value) bool {
			hashInto(h, item)
			return true
		})
	case *Map:
		v.Each(func(key string, item Value) bool {
			writeString(h, key)
			hashInto(h, item)
			return true
		})
	case *Table:
		for _, header := range v.Headers() {
			writeString(h, header)
		}
		for _, row := range v.Rows() {
			for _, cell := range row {
				hashInto(h, cell)
			}
		}
	case Range:
		writeUint64(h, uint64(v.Start))
		writeUint64(h, uint64(v.End))
	case *Regex:
		writeString(h, v.Text)
	case Binary:
		h.Write(v)
	default:
		fmt.Fprintf(h, "%p", v)
	}
}

func writeString(h io.Writer, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}

func writeUint64(h io.Writer, u uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	h.Write(buf[:])
}

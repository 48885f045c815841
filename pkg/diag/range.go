package diag

// Ranging locates a region of source code as a half-open byte range
// [From, To). A position rather than a span has From equal to To. AST nodes
// and errors embed Ranging so that they satisfy [Ranger] for free.
type Ranging struct {
	From int
	To   int
}

// Ranger is anything that knows its position in the source code.
type Ranger interface {
	// Range returns the byte range of the value.
	Range() Ranging
}

// Range returns the Ranging itself, satisfying [Ranger].
func (r Ranging) Range() Ranging { return r }

// PointRanging returns an empty Ranging anchored at byte offset p.
func PointRanging(p int) Ranging {
	return Ranging{From: p, To: p}
}

// MixedRanging combines two positioned values into a single Ranging that
// starts where a starts and ends where b ends.
func MixedRanging(a, b Ranger) Ranging {
	return Ranging{From: a.Range().From, To: b.Range().To}
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

// compareStep ranks two analyzed candidates on one criterion. It returns a
// positive number if a is better, negative if b is, and zero on a tie.
type compareStep func(a, b *SingleIndexScan) int

// compareSteps are applied in order until one breaks the tie.
var compareSteps = [...]compareStep{
	byOrderEffectiveness,
	byCovering,
	byEqualities,
	byBounds,
	byKeyColumns,
	byLeafDepth,
}

// Compare ranks two analyzed candidates. It returns a positive number if a
// is better than b, a negative number if b is better, and zero if neither
// is preferred.
func Compare(a, b *SingleIndexScan) int {
	for _, step := range compareSteps {
		if c := step(a, b); c != 0 {
			return c
		}
	}
	return 0
}

func byOrderEffectiveness(a, b *SingleIndexScan) int {
	return cmpInt(int(a.OrderEffectiveness), int(b.OrderEffectiveness))
}

// byCovering prefers a covering candidate only over one that is equally
// able or unable to absorb conditions.
func byCovering(a, b *SingleIndexScan) int {
	if a.Covering == b.Covering || a.HasConditions() != b.HasConditions() {
		return 0
	}
	if a.Covering {
		return 1
	}
	return -1
}

// byEqualities prefers any equality over none, then more over fewer.
func byEqualities(a, b *SingleIndexScan) int {
	na, nb := len(a.EqualityComparands), len(b.EqualityComparands)
	switch {
	case na == nb:
		return 0
	case na == 0:
		return -1
	case nb == 0:
		return 1
	}
	return cmpInt(na, nb)
}

func byBounds(a, b *SingleIndexScan) int {
	return cmpInt(nBounds(a), nBounds(b))
}

func nBounds(s *SingleIndexScan) int {
	n := 0
	if s.LowComparand != nil {
		n++
	}
	if s.HighComparand != nil {
		n++
	}
	return n
}

// byKeyColumns prefers the narrower index.
func byKeyColumns(a, b *SingleIndexScan) int {
	return cmpInt(b.NKeyColumns(), a.NKeyColumns())
}

// byLeafDepth prefers the index whose leaf-most table was created later,
// which for the tables of one group means deeper.
func byLeafDepth(a, b *SingleIndexScan) int {
	return cmpInt(int(a.Index.LeafMostTable().ID), int(b.Index.LeafMostTable().ID))
}

func cmpInt(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

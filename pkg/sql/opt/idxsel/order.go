// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import (
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
	"golang.org/x/tools/container/intsets"
)

// orderEffectiveness determines how well the order of s serves the goal.
// When the index delivers the requested ordering only when scanned in
// reverse, the directions of s.Ordering are flipped accordingly.
func (g *Goal) orderEffectiveness(s *SingleIndexScan) OrderEffectiveness {
	nequals := len(s.EqualityComparands)
	result := OrderNone
	if g.scope.Ordering != nil && g.sorted(s, nequals) {
		result = OrderSorted
	}
	switch {
	case g.scope.Grouping != nil:
		found, all := g.keyPrefixMatch(s, nequals, g.scope.Grouping.GroupBy)
		if found {
			switch {
			case !all:
				return OrderPartialGrouped
			case result == OrderSorted:
				return OrderSorted
			default:
				return OrderGrouped
			}
		}
	case g.scope.ProjectDistinct != nil:
		if _, all := g.keyPrefixMatch(s, nequals, g.scope.ProjectDistinct.Fields); all {
			return OrderSorted
		}
	}
	return result
}

// sorted returns true if s delivers rows in the goal's ordering, possibly
// scanned in reverse.
func (g *Goal) sorted(s *SingleIndexScan, nequals int) bool {
	ordering := s.Ordering
	var reverse intsets.Sparse
	idx := nequals
	for _, target := range g.scope.Ordering.OrderBy {
		e := g.throughGrouping(target.Expr)
		if idx < len(ordering) && ordering[idx].Expr != nil && plan.ExprEqual(ordering[idx].Expr, e) {
			if ordering[idx].Ascending != target.Ascending {
				reverse.Insert(idx)
				if idx == nequals {
					// The equality prefix is constant; scan it in the same
					// direction.
					for i := 0; i < nequals; i++ {
						reverse.Insert(i)
					}
				}
			}
			idx++
			continue
		}
		if g.equalityBound(s, nequals, e) {
			// Constant within the scan.
			continue
		}
		return false
	}
	// The remaining key columns follow the direction of the last matched
	// one.
	if idx > 0 && idx < len(ordering) && reverse.Has(idx-1) {
		for i := idx; i < len(ordering); i++ {
			reverse.Insert(i)
		}
	}
	var i int
	for reverse.TakeMin(&i) {
		ordering[i].Ascending = !ordering[i].Ascending
	}
	return true
}

// keyPrefixMatch looks for targets among the key columns following the
// equalities. Targets fixed by an equality need not appear; every other
// target must fall within the first len(targets) minus that many
// positions. It returns whether any target was found, and whether all were.
func (g *Goal) keyPrefixMatch(
	s *SingleIndexScan, nequals int, targets []plan.Expression,
) (anyFound, allFound bool) {
	positions := make([]int, len(targets))
	window := len(targets)
	for t, target := range targets {
		positions[t] = -1
		for i := nequals; i < len(s.Ordering); i++ {
			if e := s.Ordering[i].Expr; e != nil && plan.ExprEqual(target, e) {
				positions[t] = i - nequals
				break
			}
		}
		if positions[t] < 0 && g.equalityBound(s, nequals, target) {
			window--
		}
	}
	allFound = true
	for t, target := range targets {
		switch pos := positions[t]; {
		case pos >= window:
			allFound = false
		case pos < 0:
			if !g.equalityBound(s, nequals, target) {
				allFound = false
				continue
			}
		}
		anyFound = true
	}
	return anyFound, allFound
}

// equalityBound returns true if e is one of the key columns fixed by the
// equality prefix of s, or one of the values they are fixed to.
func (g *Goal) equalityBound(s *SingleIndexScan, nequals int, e plan.Expression) bool {
	for i := 0; i < nequals; i++ {
		if col := s.Columns[i]; col != nil && plan.ExprEqual(col, e) {
			return true
		}
		if plan.ExprEqual(s.EqualityComparands[i], e) {
			return true
		}
	}
	return false
}

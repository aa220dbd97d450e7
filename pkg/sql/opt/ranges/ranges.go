// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package ranges turns conditions on a single column into sorted, disjoint
// value segments. Comparisons, IS NULL tests, IN lists and OR of those on
// one column are recognized; ranges on the same column combine with And.
//
// NULL sorts before every other value. A lower endpoint of "(NULL" admits
// every non-NULL value.
package ranges

import (
	"sort"

	"github.com/cockroachdb/redact"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
)

// Endpoint bounds a segment. A nil Value is the NULL endpoint unless
// UpperWild is set, in which case the endpoint is above every value.
type Endpoint struct {
	Value     *plan.ConstExpr
	Inclusive bool
	UpperWild bool
}

var (
	nullInclusive = Endpoint{Inclusive: true}
	nullExclusive = Endpoint{}
	upperWild     = Endpoint{UpperWild: true}
)

func inclusive(v *plan.ConstExpr) Endpoint { return Endpoint{Value: v, Inclusive: true} }

func exclusive(v *plan.ConstExpr) Endpoint { return Endpoint{Value: v} }

func (e Endpoint) equal(o Endpoint) bool {
	if e.UpperWild || o.UpperWild {
		return e.UpperWild == o.UpperWild
	}
	if e.Inclusive != o.Inclusive {
		return false
	}
	cmp, ok := compareValues(e.Value, o.Value)
	return ok && cmp == 0
}

// Segment is a contiguous span of values.
type Segment struct {
	Start, End Endpoint
}

// OnlyNull is the segment holding just NULL.
var OnlyNull = Segment{Start: nullInclusive, End: nullInclusive}

// SafeFormat implements the redact.SafeFormatter interface.
func (s Segment) SafeFormat(w redact.SafePrinter, _ rune) {
	if s.Start.Inclusive {
		w.SafeRune('[')
	} else {
		w.SafeRune('(')
	}
	formatValue(w, s.Start)
	w.SafeString(", ")
	if s.End.UpperWild {
		w.SafeString("+inf)")
		return
	}
	formatValue(w, s.End)
	if s.End.Inclusive {
		w.SafeRune(']')
	} else {
		w.SafeRune(')')
	}
}

func formatValue(w redact.SafePrinter, e Endpoint) {
	if e.Value == nil {
		w.SafeString("NULL")
		return
	}
	w.Print(e.Value)
}

func (s Segment) String() string { return redact.StringWithoutMarkers(s) }

// ColumnRanges is the set of values a column may take for a conjunction of
// conditions to hold.
type ColumnRanges struct {
	Column *plan.ColumnExpr
	// Conditions are the conditions the ranges were derived from.
	Conditions []plan.Condition
	// Segments are sorted and disjoint. No segments means no value
	// qualifies.
	Segments []Segment
}

// SafeFormat implements the redact.SafeFormatter interface.
func (r *ColumnRanges) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s: ", r.Column)
	if len(r.Segments) == 0 {
		w.SafeString("none")
	}
	for i, s := range r.Segments {
		if i > 0 {
			w.SafeString(", ")
		}
		w.Print(s)
	}
}

func (r *ColumnRanges) String() string { return redact.StringWithoutMarkers(r) }

// AtCondition returns the ranges expressed by cond, or nil when cond is not
// a range condition on a single column or compares values that cannot be
// ordered against each other.
func AtCondition(cond plan.Condition) *ColumnRanges {
	col, segs := segmentsAt(cond)
	if col == nil || segs == nil {
		return nil
	}
	return &ColumnRanges{Column: col, Conditions: []plan.Condition{cond}, Segments: segs}
}

// And intersects two ranges on the same column. It returns nil if the
// columns differ or the endpoints cannot be compared.
func And(a, b *ColumnRanges) *ColumnRanges {
	if a == nil || b == nil || !plan.ExprEqual(a.Column, b.Column) {
		return nil
	}
	segs, ok := andSegments(a.Segments, b.Segments)
	if !ok {
		return nil
	}
	conds := make([]plan.Condition, 0, len(a.Conditions)+len(b.Conditions))
	conds = append(append(conds, a.Conditions...), b.Conditions...)
	return &ColumnRanges{Column: a.Column, Conditions: conds, Segments: segs}
}

func segmentsAt(cond plan.Condition) (*plan.ColumnExpr, []Segment) {
	switch c := cond.(type) {
	case *plan.ComparisonCondition:
		col, val, op := columnAndConstant(c)
		if col == nil {
			return nil, nil
		}
		return col, fromComparison(op, val)

	case *plan.FunctionCondition:
		if c.Function != plan.IsNullFunction || len(c.Operands) != 1 {
			return nil, nil
		}
		col, ok := c.Operands[0].(*plan.ColumnExpr)
		if !ok {
			return nil, nil
		}
		return col, []Segment{OnlyNull}

	case *plan.InListCondition:
		col, ok := c.Operand.(*plan.ColumnExpr)
		if !ok {
			return nil, nil
		}
		var segs []Segment
		for _, e := range c.List {
			v, ok := e.(*plan.ConstExpr)
			if !ok || v.Value == nil {
				return nil, nil
			}
			segs = append(segs, fromComparison(plan.EQ, v)...)
		}
		return col, sortAndCombine(segs)

	case *plan.LogicalCondition:
		lcol, lsegs := segmentsAt(c.Left)
		rcol, rsegs := segmentsAt(c.Right)
		if lcol == nil || rcol == nil || lsegs == nil || rsegs == nil || !plan.ExprEqual(lcol, rcol) {
			return nil, nil
		}
		if c.Op == plan.Or {
			all := make([]Segment, 0, len(lsegs)+len(rsegs))
			return lcol, sortAndCombine(append(append(all, lsegs...), rsegs...))
		}
		segs, ok := andSegments(lsegs, rsegs)
		if !ok {
			return nil, nil
		}
		return lcol, segs
	}
	return nil, nil
}

// columnAndConstant returns the column, the constant and the operator as
// seen from the column.
func columnAndConstant(c *plan.ComparisonCondition) (*plan.ColumnExpr, *plan.ConstExpr, plan.Comparison) {
	if col, ok := c.Left.(*plan.ColumnExpr); ok {
		if v, ok := c.Right.(*plan.ConstExpr); ok && v.Value != nil {
			return col, v, c.Op
		}
	}
	if col, ok := c.Right.(*plan.ColumnExpr); ok {
		if v, ok := c.Left.(*plan.ConstExpr); ok && v.Value != nil {
			return col, v, c.Op.Reverse()
		}
	}
	return nil, nil, c.Op
}

func fromComparison(op plan.Comparison, v *plan.ConstExpr) []Segment {
	switch op {
	case plan.EQ:
		return []Segment{{Start: inclusive(v), End: inclusive(v)}}
	case plan.LT:
		return []Segment{{Start: nullExclusive, End: exclusive(v)}}
	case plan.LE:
		return []Segment{{Start: nullExclusive, End: inclusive(v)}}
	case plan.GT:
		return []Segment{{Start: exclusive(v), End: upperWild}}
	case plan.GE:
		return []Segment{{Start: inclusive(v), End: upperWild}}
	case plan.NE:
		return append(fromComparison(plan.LT, v), fromComparison(plan.GT, v)...)
	}
	return nil
}

type result int8

const (
	lt result = iota
	// ltBarely means the values are equal and only the first endpoint is
	// inclusive.
	ltBarely
	gt
	// gtBarely means the values are equal and only the second endpoint is
	// inclusive.
	gtBarely
	eq
	invalid
)

func compareValues(a, b *plan.ConstExpr) (int, bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	}
	return plan.CompareConstants(a, b)
}

func compareEndpoints(a, b Endpoint) result {
	if a.equal(b) {
		return eq
	}
	if a.UpperWild {
		return gt
	}
	if b.UpperWild {
		return lt
	}
	cmp, ok := compareValues(a.Value, b.Value)
	switch {
	case !ok:
		return invalid
	case cmp < 0:
		return lt
	case cmp > 0:
		return gt
	case a.Inclusive:
		return ltBarely
	default:
		return gtBarely
	}
}

// sortAndCombine orders segments by start and merges the overlapping ones.
// It returns nil if two endpoints cannot be compared.
func sortAndCombine(segs []Segment) []Segment {
	valid := true
	sort.SliceStable(segs, func(i, j int) bool {
		switch compareEndpoints(segs[i].Start, segs[j].Start) {
		case lt, ltBarely:
			return true
		case invalid:
			valid = false
		}
		return false
	})
	if !valid {
		return nil
	}
	out := make([]Segment, 0, len(segs))
	for _, cur := range segs {
		if len(out) == 0 {
			out = append(out, cur)
			continue
		}
		prev := &out[len(out)-1]
		startsOverlap, ok := overlap(prev.End, cur.Start, true)
		if !ok {
			return nil
		}
		if !startsOverlap {
			out = append(out, cur)
			continue
		}
		contained, ok := overlap(prev.End, cur.End, false)
		if !ok {
			return nil
		}
		if !contained {
			prev.End = cur.End
		}
	}
	return out
}

// overlap reports whether high does not lie strictly above low. loose
// decides the case where they only differ by inclusivity with high being
// the inclusive one.
func overlap(low, high Endpoint, loose bool) (bool, bool) {
	switch compareEndpoints(low, high) {
	case gtBarely:
		return loose, true
	case eq:
		return low.Inclusive || low.UpperWild, true
	case ltBarely, gt:
		return true, true
	case lt:
		return false, true
	}
	return false, false
}

func andSegments(left, right []Segment) ([]Segment, bool) {
	var res []Segment
	for _, l := range left {
		for _, r := range right {
			s, nonEmpty, ok := andSegment(l, r)
			if !ok {
				return nil, false
			}
			if nonEmpty {
				res = append(res, s)
			}
		}
	}
	if res == nil {
		res = []Segment{}
	}
	return res, true
}

func andSegment(l, r Segment) (_ Segment, nonEmpty, ok bool) {
	start, ok := tighter(l.Start, r.Start, true)
	if !ok {
		return Segment{}, false, false
	}
	end, ok := tighter(l.End, r.End, false)
	if !ok {
		return Segment{}, false, false
	}
	switch compareEndpoints(start, end) {
	case gt, gtBarely, ltBarely:
		return Segment{}, false, true
	case eq:
		if !start.Inclusive && !start.UpperWild {
			return Segment{}, false, true
		}
	case invalid:
		return Segment{}, false, false
	}
	return Segment{Start: start, End: end}, true, true
}

// tighter returns the larger of two starts, or the smaller of two ends. On
// equal values the exclusive endpoint is the tighter one.
func tighter(a, b Endpoint, isStart bool) (Endpoint, bool) {
	if a.UpperWild || b.UpperWild {
		if a.UpperWild == isStart {
			return a, true
		}
		return b, true
	}
	cmp, ok := compareValues(a.Value, b.Value)
	if !ok {
		return Endpoint{}, false
	}
	if cmp == 0 {
		return Endpoint{Value: a.Value, Inclusive: a.Inclusive && b.Inclusive}, true
	}
	if (cmp > 0) == isStart {
		return a, true
	}
	return b, true
}

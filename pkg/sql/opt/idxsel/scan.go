// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/opt/ranges"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
)

// OrderEffectiveness describes how well the order of an index's rows serves
// the ordering, grouping or distinct of a query. Larger values are better.
type OrderEffectiveness int8

const (
	// OrderNone means the index order is of no use.
	OrderNone OrderEffectiveness = iota
	// OrderPartialGrouped means some, but not all, grouping columns arrive
	// together.
	OrderPartialGrouped
	// OrderGrouped means rows of each group arrive together.
	OrderGrouped
	// OrderSorted means the rows arrive in the requested order.
	OrderSorted
)

var orderEffectivenessNames = [...]string{
	OrderNone:           "NONE",
	OrderPartialGrouped: "PARTIAL_GROUPED",
	OrderGrouped:        "GROUPED",
	OrderSorted:         "SORTED",
}

func (o OrderEffectiveness) String() string { return orderEffectivenessNames[o] }

// SafeValue implements the redact.SafeValue interface.
func (OrderEffectiveness) SafeValue() {}

// IndexOrdering is one key column of an index scan, as the query names it.
type IndexOrdering struct {
	// Expr is nil when the index sorts by a column the query cannot name.
	Expr      plan.Expression
	Ascending bool
}

// SingleIndexScan is a candidate access path through one table or group
// index, together with the conditions it absorbs and the analysis results
// used to rank it.
type SingleIndexScan struct {
	Index *cat.Index

	// Leaf and Root are the table sources of the index's leaf-most and
	// root-most tables. LeafRequired and RootRequired bound the span of
	// tables the query needs rows from.
	Leaf, Root                 *plan.TableSource
	LeafRequired, RootRequired *plan.TableSource

	// Columns has one entry per column of Index.AllColumns(). An entry is nil
	// when the query cannot name that column.
	Columns []plan.Expression
	// Ordering has one entry per key column. Its directions may be flipped
	// by order analysis when a reverse scan serves the query.
	Ordering []IndexOrdering

	// EqualityComparands bind the leading key columns, in key order.
	EqualityComparands []plan.Expression
	// LowComparand and HighComparand bound the key column following the
	// equalities.
	LowComparand, HighComparand plan.Expression
	LowInclusive, HighInclusive bool
	// ConditionRange is set instead of the bounds when the column is
	// constrained by a union of segments.
	ConditionRange *ranges.ColumnRanges

	// Conditions are the conditions the scan absorbs.
	Conditions []plan.Condition

	OrderEffectiveness OrderEffectiveness
	Covering           bool
	// RequiredTables are the tables the query still needs rows from after
	// this scan, set by covering analysis.
	RequiredTables plan.TableSourceSet
}

// NewTableIndexScan returns a candidate scanning a table index of ts.
func NewTableIndexScan(ix *cat.Index, ts *plan.TableSource) *SingleIndexScan {
	if ix.IsGroupIndex() || ix.Table() != ts.Table {
		panic(errors.AssertionFailedf("index %s is not an index of %s", ix, ts.Table.Name))
	}
	s := &SingleIndexScan{Index: ix, Leaf: ts, Root: ts, LeafRequired: ts, RootRequired: ts}
	s.init()
	return s
}

// NewGroupIndexScan returns a candidate scanning a group index whose
// leaf-most table is leaf.
func NewGroupIndexScan(
	ix *cat.Index, root, rootRequired, leafRequired, leaf *plan.TableSource,
) *SingleIndexScan {
	if !ix.IsGroupIndex() {
		panic(errors.AssertionFailedf("index %s is not a group index", ix))
	}
	if ix.LeafMostTable() != leaf.Table || ix.RootMostTable() != root.Table {
		panic(errors.AssertionFailedf(
			"group index %s spans %s to %s, not %s to %s",
			ix, ix.RootMostTable().Name, ix.LeafMostTable().Name, root.Table.Name, leaf.Table.Name))
	}
	s := &SingleIndexScan{
		Index: ix, Leaf: leaf, Root: root, LeafRequired: leafRequired, RootRequired: rootRequired,
	}
	s.init()
	return s
}

func (s *SingleIndexScan) init() {
	all := s.Index.AllColumns()
	s.Columns = make([]plan.Expression, len(all))
	for i, ic := range all {
		if i < s.Index.SpatialColumns {
			// Folded into the z-value; the index is not ordered by them.
			continue
		}
		s.Columns[i] = s.indexExpression(ic.Column)
	}
	s.reset()
}

// reset clears the results of a previous analysis and restores the
// declared key directions.
func (s *SingleIndexScan) reset() {
	s.Ordering = make([]IndexOrdering, len(s.Index.KeyColumns))
	for i, ic := range s.Index.KeyColumns {
		s.Ordering[i] = IndexOrdering{Expr: s.Columns[i], Ascending: ic.Ascending}
	}
	s.EqualityComparands = nil
	s.LowComparand, s.HighComparand = nil, nil
	s.LowInclusive, s.HighInclusive = false, false
	s.ConditionRange = nil
	s.Conditions = nil
	s.OrderEffectiveness = OrderNone
	s.Covering = false
	s.RequiredTables = nil
}

// indexExpression returns the column of the table source on the leaf's
// ancestor chain that c belongs to, or nil.
func (s *SingleIndexScan) indexExpression(c *cat.Column) plan.Expression {
	for ts := s.Leaf; ts != nil; ts = ts.ParentTable() {
		if ts.Table == c.Table() {
			return plan.NewColumnExpr(ts, c)
		}
	}
	return nil
}

// HasConditions returns true if the scan absorbs any condition.
func (s *SingleIndexScan) HasConditions() bool {
	return len(s.Conditions) > 0
}

// Tables returns the table sources from the leaf-most up to the root-most
// table of the index.
func (s *SingleIndexScan) Tables() plan.TableSourceSet {
	res := make(plan.TableSourceSet)
	for ts := s.Leaf; ts != nil; ts = ts.ParentTable() {
		res.Add(ts)
		if ts == s.Root {
			break
		}
	}
	return res
}

// NKeyColumns returns the number of declared key columns.
func (s *SingleIndexScan) NKeyColumns() int {
	return len(s.Index.KeyColumns)
}

func (s *SingleIndexScan) hasCondition(c plan.Condition) bool {
	for _, held := range s.Conditions {
		if held == c {
			return true
		}
	}
	return false
}

func (s *SingleIndexScan) addCondition(c plan.Condition) {
	if !s.hasCondition(c) {
		s.Conditions = append(s.Conditions, c)
	}
}

func (s *SingleIndexScan) addEquality(c plan.Condition, comparand plan.Expression) {
	s.EqualityComparands = append(s.EqualityComparands, comparand)
	s.addCondition(c)
}

// addInequality records a bound on the key column after the equalities. op
// is oriented with the column on the left. When a bound is already set the
// tighter one is kept; bounds that cannot be compared at planning time are
// combined with _max or _min when their inclusivity agrees, and otherwise
// the condition is left to be evaluated after the scan.
func (s *SingleIndexScan) addInequality(
	c plan.Condition, op plan.Comparison, comparand plan.Expression,
) {
	switch op {
	case plan.GT, plan.GE:
		var ok bool
		s.LowComparand, s.LowInclusive, ok = merge(
			s.LowComparand, s.LowInclusive, comparand, op == plan.GE, true /* low */)
		if ok {
			s.addCondition(c)
		}
	case plan.LT, plan.LE:
		var ok bool
		s.HighComparand, s.HighInclusive, ok = merge(
			s.HighComparand, s.HighInclusive, comparand, op == plan.LE, false /* low */)
		if ok {
			s.addCondition(c)
		}
	default:
		panic(errors.AssertionFailedf("%s is not an inequality", op))
	}
}

func merge(
	old plan.Expression, oldInclusive bool, e plan.Expression, inclusive, low bool,
) (plan.Expression, bool, bool) {
	if old == nil {
		return e, inclusive, true
	}
	oc, ok1 := old.(*plan.ConstExpr)
	nc, ok2 := e.(*plan.ConstExpr)
	if ok1 && ok2 {
		if cmp, ok := plan.CompareConstants(nc, oc); ok {
			if !low {
				cmp = -cmp
			}
			switch {
			case cmp > 0:
				return e, inclusive, true
			case cmp < 0:
				return old, oldInclusive, true
			default:
				return old, oldInclusive && inclusive, true
			}
		}
	}
	if oldInclusive != inclusive {
		return old, oldInclusive, false
	}
	name := "_min"
	if low {
		name = "_max"
	}
	return &plan.FunctionExpr{Name: name, Operands: []plan.Expression{old, e}, Typ: old.Type()},
		inclusive, true
}

func (s *SingleIndexScan) addRange(r *ranges.ColumnRanges) {
	s.ConditionRange = r
	for _, c := range r.Conditions {
		s.addCondition(c)
	}
}

// SafeFormat implements the redact.SafeFormatter interface.
func (s *SingleIndexScan) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("Index(%s", s.Index)
	for _, e := range s.EqualityComparands {
		w.Printf(", =%s", e)
	}
	if s.LowComparand != nil {
		w.SafeString(", >")
		if s.LowInclusive {
			w.SafeRune('=')
		}
		w.Print(s.LowComparand)
	}
	if s.HighComparand != nil {
		w.SafeString(", <")
		if s.HighInclusive {
			w.SafeRune('=')
		}
		w.Print(s.HighComparand)
	}
	if s.ConditionRange != nil {
		w.Printf(", %s", s.ConditionRange)
	}
	w.Printf(", %s", s.OrderEffectiveness)
	if s.Covering {
		w.SafeString(", covering")
	}
	w.SafeRune(')')
}

func (s *SingleIndexScan) String() string { return redact.StringWithoutMarkers(s) }

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package idxsel picks the index through which a query reads a table or a
// group of joined tables. A Goal is built for one query block; it evaluates
// table and group index candidates against the block's conditions, ordering,
// grouping and distinct, ranks the usable ones, and installs the winner by
// removing the conditions it absorbs and the sorts it makes unnecessary.
//
// A Goal is not safe for concurrent use. Internal invariant violations panic
// and are returned as errors by the exported entry points.
package idxsel

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/hkeyplan/hkeyplan/pkg/settings"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/opt"
	"github.com/hkeyplan/hkeyplan/pkg/sql/opt/ranges"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
	"github.com/hkeyplan/hkeyplan/pkg/sql/rowtype"
)

// Env carries the process state a Goal consults.
type Env struct {
	// Settings defaults to a fresh set of values.
	Settings *settings.Values
	// Metrics defaults to unregistered counters.
	Metrics *Metrics
	// RowTypes, if set, is used to check that each group index candidate's
	// row type leads to the probed table.
	RowTypes *rowtype.Schema
}

// Scope is the part of a query block an index can serve.
type Scope struct {
	// BoundTables are the tables whose rows are fixed while the block runs,
	// such as those of enclosing queries.
	BoundTables plan.TableSourceSet
	// ConditionSources are the condition lists candidates may absorb
	// conditions from.
	ConditionSources []*plan.ConditionList
	Grouping         *plan.AggregateSource
	Ordering         *plan.Sort
	// ProjectDistinct is the projection feeding a DISTINCT.
	ProjectDistinct *plan.Project
}

// Goal selects an index for one query block.
type Goal struct {
	env   Env
	id    int64
	query *plan.Query
	scope Scope

	conditions   []plan.Condition
	required     *RequiredColumns
	updateTarget *cat.Table

	// columnRanges is built on first use. A nil entry marks a column whose
	// ranges could not be combined.
	columnRanges map[plan.ColumnKey]*ranges.ColumnRanges
}

var goalSeq atomic.Int64

// NewGoal returns a goal for the block of query described by scope, over
// the given joined tables.
func NewGoal(env Env, query *plan.Query, scope Scope, tables []*plan.TableSource) (_ *Goal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	if scope.ProjectDistinct != nil {
		if scope.Grouping != nil {
			panic(errors.AssertionFailedf("query block has both a grouping and a distinct"))
		}
		if scope.Ordering != nil {
			panic(errors.AssertionFailedf("query block has both an ordering and a distinct"))
		}
	}
	if env.Settings == nil {
		env.Settings = settings.NewValues()
	}
	if env.Metrics == nil {
		env.Metrics = NewMetrics()
	}
	g := &Goal{env: env, id: goalSeq.Add(1), query: query, scope: scope}
	for _, src := range scope.ConditionSources {
		g.conditions = append(g.conditions, src.Conditions...)
	}
	switch query.Kind {
	case plan.UpdateQuery, plan.DeleteQuery:
		g.updateTarget = query.Target
	}
	g.required = NewRequiredColumns(tables)
	g.collectRequired()
	return g, nil
}

// Usable analyzes s against the goal: it records the conditions the index
// can absorb, its order effectiveness and whether it covers the query. It
// returns false if the index serves none of them. Any earlier analysis of
// s is discarded.
func (g *Goal) Usable(s *SingleIndexScan) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	return g.usable(s), nil
}

func (g *Goal) usable(s *SingleIndexScan) bool {
	s.reset()
	nkeys := s.NKeyColumns()
	nequals := 0
	for ; nequals < nkeys; nequals++ {
		e := s.Columns[nequals]
		if e == nil {
			break
		}
		cond, comparand := g.findEquality(s, e)
		if cond == nil {
			break
		}
		s.addEquality(cond, comparand)
	}
	if nequals < nkeys {
		if e := s.Columns[nequals]; e != nil {
			if !g.findInequalities(s, e) {
				if r := g.rangeFor(e); r != nil {
					s.addRange(r)
				}
			}
		}
	}
	s.OrderEffectiveness = g.orderEffectiveness(s)
	s.Covering = g.covering(s)
	return s.OrderEffectiveness != OrderNone || s.HasConditions() || s.Covering
}

// findEquality returns a condition not yet absorbed by s that fixes e to a
// constant or bound value, or NULL.
func (g *Goal) findEquality(
	s *SingleIndexScan, e plan.Expression,
) (plan.Condition, plan.Expression) {
	for _, c := range g.conditions {
		if s.hasCondition(c) {
			continue
		}
		switch t := c.(type) {
		case *plan.ComparisonCondition:
			if t.Op != plan.EQ {
				continue
			}
			if plan.ExprEqual(t.Left, e) && g.constantOrBound(t.Right) {
				return c, t.Right
			}
			if plan.ExprEqual(t.Right, e) && g.constantOrBound(t.Left) {
				return c, t.Left
			}
		case *plan.FunctionCondition:
			if t.Function == plan.IsNullFunction && len(t.Operands) == 1 &&
				plan.ExprEqual(t.Operands[0], e) {
				return c, plan.NewConstExpr(nil)
			}
		}
	}
	return nil, nil
}

// findInequalities adds the bounds on e to s and returns whether any
// inequality on e was found.
func (g *Goal) findInequalities(s *SingleIndexScan, e plan.Expression) bool {
	found := false
	for _, c := range g.conditions {
		if s.hasCondition(c) {
			continue
		}
		cmp, ok := c.(*plan.ComparisonCondition)
		if !ok || cmp.Op == plan.EQ || cmp.Op == plan.NE {
			// Ranges handle <>.
			continue
		}
		var op plan.Comparison
		var comparand plan.Expression
		switch {
		case plan.ExprEqual(cmp.Left, e) && g.constantOrBound(cmp.Right):
			op, comparand = cmp.Op, cmp.Right
		case plan.ExprEqual(cmp.Right, e) && g.constantOrBound(cmp.Left):
			op, comparand = cmp.Op.Reverse(), cmp.Left
		default:
			continue
		}
		s.addInequality(c, op, comparand)
		found = true
	}
	return found
}

// constantOrBound returns true if e only references bound tables and
// contains no subquery, so its value is fixed when the index is probed.
func (g *Goal) constantOrBound(e plan.Expression) bool {
	sources, hasSubquery := plan.ReferencedSources(e)
	if hasSubquery {
		return false
	}
	for _, src := range sources {
		if !g.scope.BoundTables.ContainsSource(src) {
			return false
		}
	}
	return true
}

func (g *Goal) rangeFor(e plan.Expression) *ranges.ColumnRanges {
	col, ok := e.(*plan.ColumnExpr)
	if !ok {
		return nil
	}
	if g.columnRanges == nil {
		g.columnRanges = make(map[plan.ColumnKey]*ranges.ColumnRanges)
		for _, c := range g.conditions {
			r := ranges.AtCondition(c)
			if r == nil {
				continue
			}
			key := r.Column.Key()
			if prev, ok := g.columnRanges[key]; ok {
				if prev == nil {
					continue
				}
				r = ranges.And(prev, r)
			}
			g.columnRanges[key] = r
		}
	}
	return g.columnRanges[col.Key()]
}

// throughGrouping maps a reference to a grouping column back to the
// grouped expression.
func (g *Goal) throughGrouping(e plan.Expression) plan.Expression {
	grouping := g.scope.Grouping
	if grouping == nil {
		return e
	}
	if col, ok := e.(*plan.ColumnExpr); ok && col.Source == grouping && col.Position < len(grouping.GroupBy) {
		return grouping.GroupBy[col.Position]
	}
	return e
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import "github.com/hkeyplan/hkeyplan/pkg/sql/plan"

// collectRequired records the columns the query reads outside the goal's
// own conditions and ordering. Group join conditions are satisfied by the
// group's clustering and only count inside correlated subqueries.
func (g *Goal) collectRequired() {
	own := make(map[plan.Expression]struct{}, len(g.conditions))
	for _, c := range g.conditions {
		own[c] = struct{}{}
	}
	opts := plan.FoldOptions{
		ExcludeNode: func(n plan.Node) bool {
			return g.scope.Ordering != nil && n == plan.Node(g.scope.Ordering)
		},
		ExcludeExpr: func(e plan.Expression, inCorrelated bool) bool {
			if _, ok := own[e]; ok {
				return true
			}
			return excludeGroupJoin(e, inCorrelated)
		},
	}
	plan.VisitColumns(g.query, opts, g.required.require)
}

func excludeGroupJoin(e plan.Expression, inCorrelated bool) bool {
	c, ok := e.(plan.Condition)
	return ok && !inCorrelated && c.Implementation() == plan.ImplementationGroupJoin
}

// covering determines whether s supplies every column the query needs, and
// records on s the tables still required after it.
func (g *Goal) covering(s *SingleIndexScan) bool {
	after := g.required.clone()
	exclude := plan.FoldOptions{
		ExcludeExpr: func(e plan.Expression, _ bool) bool { return excludeGroupJoin(e, false) },
	}
	for _, c := range g.conditions {
		if !s.hasCondition(c) {
			plan.VisitExprColumns(c, exclude, after.require)
		}
	}
	if g.scope.Ordering != nil && s.OrderEffectiveness != OrderSorted {
		for _, o := range g.scope.Ordering.OrderBy {
			plan.VisitExprColumns(o.Expr, exclude, after.require)
		}
	}

	joined := s.Tables()
	s.RequiredTables = make(plan.TableSourceSet)
	moreTables := false
	for _, ts := range after.Tables() {
		switch {
		case !joined.Contains(ts):
			moreTables = true
			s.RequiredTables.Add(ts)
		case after.HasColumns(ts), g.updateTarget != nil && ts.Table == g.updateTarget:
			s.RequiredTables.Add(ts)
		}
	}
	if moreTables || g.updateTarget != nil {
		// An update reads the base row regardless.
		return false
	}
	if !CoveringIndexesEnabled.Get(g.env.Settings) {
		return false
	}
	all := s.Index.AllColumns()
	for i, e := range s.Columns {
		if col, ok := e.(*plan.ColumnExpr); ok && all[i].Recoverable {
			after.have(col)
		}
	}
	return after.Empty()
}

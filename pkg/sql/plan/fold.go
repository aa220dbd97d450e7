// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

// FoldOptions prunes a column visit.
type FoldOptions struct {
	// ExcludeNode skips the expressions owned by a node. Its inputs are
	// still visited.
	ExcludeNode func(Node) bool
	// ExcludeExpr skips an expression and everything below it.
	// inCorrelated is true when the expression lies inside a correlated
	// subquery.
	ExcludeExpr func(e Expression, inCorrelated bool) bool
}

// VisitColumns calls fn on every column reference in the plan rooted at n,
// including those inside subqueries.
func VisitColumns(n Node, opts FoldOptions, fn func(*ColumnExpr)) {
	f := folder{opts: opts, fn: fn}
	f.node(n)
}

// VisitExprColumns calls fn on every column reference in e. Only
// opts.ExcludeExpr applies.
func VisitExprColumns(e Expression, opts FoldOptions, fn func(*ColumnExpr)) {
	f := folder{opts: opts, fn: fn}
	f.expr(e)
}

type folder struct {
	opts       FoldOptions
	fn         func(*ColumnExpr)
	correlated int
}

func (f *folder) node(n Node) {
	if n == nil {
		return
	}
	if f.opts.ExcludeNode == nil || !f.opts.ExcludeNode(n) {
		for _, e := range n.Exprs() {
			f.expr(e)
		}
	}
	sq, isSubquery := n.(*Subquery)
	if isSubquery && sq.Correlated() {
		f.correlated++
		defer func() { f.correlated-- }()
	}
	for _, in := range n.Inputs() {
		f.node(in)
	}
}

func (f *folder) expr(e Expression) {
	if e == nil {
		return
	}
	if f.opts.ExcludeExpr != nil && f.opts.ExcludeExpr(e, f.correlated > 0) {
		return
	}
	switch t := e.(type) {
	case *ColumnExpr:
		f.fn(t)
	case *SubqueryExpr:
		f.node(t.Subquery)
		return
	}
	e.walk(f.expr)
}

// ReferencedSources returns the sources of every column e references, and
// whether e contains a subquery.
func ReferencedSources(e Expression) (sources []ColumnSource, hasSubquery bool) {
	var visit func(Expression)
	visit = func(e Expression) {
		switch t := e.(type) {
		case *ColumnExpr:
			for _, s := range sources {
				if s == t.Source {
					return
				}
			}
			sources = append(sources, t.Source)
			return
		case *SubqueryExpr:
			hasSubquery = true
			return
		}
		e.walk(visit)
	}
	visit(e)
	return sources, hasSubquery
}

// TableSourceSet is a set of table sources.
type TableSourceSet map[*TableSource]struct{}

// MakeTableSourceSet returns a set holding sources.
func MakeTableSourceSet(sources ...*TableSource) TableSourceSet {
	s := make(TableSourceSet, len(sources))
	for _, ts := range sources {
		s.Add(ts)
	}
	return s
}

// Add inserts ts.
func (s TableSourceSet) Add(ts *TableSource) { s[ts] = struct{}{} }

// Contains returns true if ts is in the set.
func (s TableSourceSet) Contains(ts *TableSource) bool {
	_, ok := s[ts]
	return ok
}

// ContainsSource is Contains for any column source. Sources other than
// table sources are never in the set.
func (s TableSourceSet) ContainsSource(cs ColumnSource) bool {
	ts, ok := cs.(*TableSource)
	return ok && s.Contains(ts)
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package plan holds the logical plan fragments the index selection rules
// operate on: table sources over groups, filters, sorts, aggregations,
// projections and the scalar expressions they own.
package plan

import (
	"github.com/cockroachdb/errors"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
)

// Node is a relational plan node. Each node knows its output (parent) so
// that rewrites can splice nodes in and out.
type Node interface {
	// Output returns the node consuming this one, or nil for the root.
	Output() Node
	// Inputs returns the nodes this one consumes.
	Inputs() []Node
	// ReplaceInput swaps the input old for new.
	ReplaceInput(old, new Node)
	// Exprs returns the expressions owned by this node, excluding those of
	// its inputs.
	Exprs() []Expression

	setOutput(Node)
}

type nodeBase struct {
	output Node
}

// Output implements the Node interface.
func (n *nodeBase) Output() Node { return n.output }

func (n *nodeBase) setOutput(o Node) { n.output = o }

// singleInput is embedded by nodes with exactly one input.
type singleInput struct {
	nodeBase
	Input Node
}

// Inputs implements the Node interface.
func (n *singleInput) Inputs() []Node { return []Node{n.Input} }

func (n *singleInput) replace(self, old, new Node) {
	if n.Input != old {
		panic(errors.AssertionFailedf("%T is not an input of %T", old, self))
	}
	n.Input = new
	new.setOutput(self)
}

func link(self Node, inputs ...Node) {
	for _, in := range inputs {
		if in != nil {
			in.setOutput(self)
		}
	}
}

// QueryKind is the statement kind of a Query.
type QueryKind int8

// Statement kinds.
const (
	SelectQuery QueryKind = iota
	UpdateQuery
	DeleteQuery
	InsertQuery
)

func (k QueryKind) String() string {
	switch k {
	case UpdateQuery:
		return "UPDATE"
	case DeleteQuery:
		return "DELETE"
	case InsertQuery:
		return "INSERT"
	}
	return "SELECT"
}

// Query is the root of a statement plan.
type Query struct {
	singleInput
	Kind QueryKind
	// Target is the table modified by UPDATE, DELETE and INSERT.
	Target *cat.Table
	// UpdateColumns are the new column values of an UPDATE.
	UpdateColumns []Expression
}

// NewQuery returns a statement over input.
func NewQuery(kind QueryKind, target *cat.Table, input Node) *Query {
	q := &Query{Kind: kind, Target: target}
	q.Input = input
	link(q, input)
	return q
}

// ReplaceInput implements the Node interface.
func (q *Query) ReplaceInput(old, new Node) { q.replace(q, old, new) }

// Exprs implements the Node interface.
func (q *Query) Exprs() []Expression { return q.UpdateColumns }

// TableGroup is one group joined by a query.
type TableGroup struct {
	Group  *cat.Group
	Tables []*TableSource
}

// TableSource is one occurrence of a base table in a join.
type TableSource struct {
	nodeBase
	Table *cat.Table
	Group *TableGroup
	// Required is false when the table is the optional side of an outer
	// join.
	Required bool
}

var _ Node = &TableSource{}

// SourceName implements the ColumnSource interface.
func (ts *TableSource) SourceName() string { return ts.Table.Name }

// ParentTable returns the source of the parent table in the same join, or
// nil when the parent does not take part.
func (ts *TableSource) ParentTable() *TableSource {
	parent := ts.Table.Parent()
	if parent == nil || ts.Group == nil {
		return nil
	}
	for _, other := range ts.Group.Tables {
		if other.Table == parent {
			return other
		}
	}
	return nil
}

// Column returns a reference to the named column, or nil.
func (ts *TableSource) Column(name string) *ColumnExpr {
	c := ts.Table.Column(name)
	if c == nil {
		return nil
	}
	return NewColumnExpr(ts, c)
}

// Inputs implements the Node interface.
func (ts *TableSource) Inputs() []Node { return nil }

// ReplaceInput implements the Node interface.
func (ts *TableSource) ReplaceInput(old, _ Node) {
	panic(errors.AssertionFailedf("table source has no input %T", old))
}

// Exprs implements the Node interface.
func (ts *TableSource) Exprs() []Expression { return nil }

// TableGroupJoinTree joins the table sources of one group along their
// parent/child links.
type TableGroupJoinTree struct {
	nodeBase
	Group          *TableGroup
	JoinConditions *ConditionList
}

var _ Node = &TableGroupJoinTree{}

// NewTableGroupJoinTree returns a join over group's table sources.
func NewTableGroupJoinTree(group *TableGroup, joinConditions *ConditionList) *TableGroupJoinTree {
	if joinConditions == nil {
		joinConditions = NewConditionList()
	}
	j := &TableGroupJoinTree{Group: group, JoinConditions: joinConditions}
	for _, ts := range group.Tables {
		link(j, ts)
	}
	return j
}

// Inputs implements the Node interface.
func (j *TableGroupJoinTree) Inputs() []Node {
	res := make([]Node, len(j.Group.Tables))
	for i, ts := range j.Group.Tables {
		res[i] = ts
	}
	return res
}

// ReplaceInput implements the Node interface.
func (j *TableGroupJoinTree) ReplaceInput(old, _ Node) {
	panic(errors.AssertionFailedf("cannot replace table source %T of a group join", old))
}

// Exprs implements the Node interface.
func (j *TableGroupJoinTree) Exprs() []Expression { return conditionExprs(j.JoinConditions) }

// Select filters its input.
type Select struct {
	singleInput
	Conditions *ConditionList
}

// NewSelect returns input filtered by conds.
func NewSelect(input Node, conds *ConditionList) *Select {
	s := &Select{Conditions: conds}
	s.Input = input
	link(s, input)
	return s
}

// ReplaceInput implements the Node interface.
func (s *Select) ReplaceInput(old, new Node) { s.replace(s, old, new) }

// Exprs implements the Node interface.
func (s *Select) Exprs() []Expression { return conditionExprs(s.Conditions) }

func conditionExprs(l *ConditionList) []Expression {
	if l == nil {
		return nil
	}
	res := make([]Expression, len(l.Conditions))
	for i, c := range l.Conditions {
		res[i] = c
	}
	return res
}

// OrderByExpr is one term of an ordering.
type OrderByExpr struct {
	Expr      Expression
	Ascending bool
}

func (o OrderByExpr) String() string {
	if o.Ascending {
		return o.Expr.String()
	}
	return o.Expr.String() + " DESC"
}

// Sort orders its input.
type Sort struct {
	singleInput
	OrderBy []OrderByExpr
}

// NewSort returns input ordered by orderBy.
func NewSort(input Node, orderBy []OrderByExpr) *Sort {
	s := &Sort{OrderBy: orderBy}
	s.Input = input
	link(s, input)
	return s
}

// ReplaceInput implements the Node interface.
func (s *Sort) ReplaceInput(old, new Node) { s.replace(s, old, new) }

// Exprs implements the Node interface.
func (s *Sort) Exprs() []Expression {
	res := make([]Expression, len(s.OrderBy))
	for i := range s.OrderBy {
		res[i] = s.OrderBy[i].Expr
	}
	return res
}

// AggregateImplementation tells how an aggregation gets its input grouped.
type AggregateImplementation int8

const (
	// AggregateUnknown is the state before index selection.
	AggregateUnknown AggregateImplementation = iota
	// AggregateSort sorts the input by the grouping columns.
	AggregateSort
	// AggregatePreaggregateResort aggregates runs of partially grouped input
	// then sorts and aggregates again.
	AggregatePreaggregateResort
	// AggregatePresorted relies on the input already being grouped.
	AggregatePresorted
)

func (a AggregateImplementation) String() string {
	switch a {
	case AggregateSort:
		return "SORT"
	case AggregatePreaggregateResort:
		return "PREAGGREGATE_RESORT"
	case AggregatePresorted:
		return "PRESORTED"
	}
	return "UNKNOWN"
}

// AggregateSource groups its input. Its output columns are the group by
// expressions followed by the aggregates, referenced by position.
type AggregateSource struct {
	singleInput
	GroupBy        []Expression
	Aggregates     []Expression
	Implementation AggregateImplementation
}

var _ ColumnSource = &AggregateSource{}

// NewAggregateSource returns input grouped by groupBy.
func NewAggregateSource(input Node, groupBy, aggregates []Expression) *AggregateSource {
	a := &AggregateSource{GroupBy: groupBy, Aggregates: aggregates}
	a.Input = input
	link(a, input)
	return a
}

// SourceName implements the ColumnSource interface.
func (a *AggregateSource) SourceName() string { return "GROUP" }

// Field returns the expression computing output column i.
func (a *AggregateSource) Field(i int) Expression {
	if i < len(a.GroupBy) {
		return a.GroupBy[i]
	}
	return a.Aggregates[i-len(a.GroupBy)]
}

// ColumnRef returns a reference to output column i.
func (a *AggregateSource) ColumnRef(i int) *ColumnExpr {
	return &ColumnExpr{Source: a, Position: i, Typ: a.Field(i).Type()}
}

// ReplaceInput implements the Node interface.
func (a *AggregateSource) ReplaceInput(old, new Node) { a.replace(a, old, new) }

// Exprs implements the Node interface.
func (a *AggregateSource) Exprs() []Expression {
	return append(append([]Expression(nil), a.GroupBy...), a.Aggregates...)
}

// Project computes its output columns.
type Project struct {
	singleInput
	Fields []Expression
}

// NewProject returns fields computed over input.
func NewProject(input Node, fields []Expression) *Project {
	p := &Project{Fields: fields}
	p.Input = input
	link(p, input)
	return p
}

// ReplaceInput implements the Node interface.
func (p *Project) ReplaceInput(old, new Node) { p.replace(p, old, new) }

// Exprs implements the Node interface.
func (p *Project) Exprs() []Expression { return p.Fields }

// DistinctImplementation tells how duplicates are removed.
type DistinctImplementation int8

const (
	// DistinctUnknown is the state before index selection.
	DistinctUnknown DistinctImplementation = iota
	// DistinctSort sorts the input first.
	DistinctSort
	// DistinctPresorted relies on the input already being sorted.
	DistinctPresorted
)

func (d DistinctImplementation) String() string {
	switch d {
	case DistinctSort:
		return "SORT"
	case DistinctPresorted:
		return "PRESORTED"
	}
	return "UNKNOWN"
}

// Distinct removes duplicate rows of its input.
type Distinct struct {
	singleInput
	Implementation DistinctImplementation
}

// NewDistinct returns input without duplicates.
func NewDistinct(input Node) *Distinct {
	d := &Distinct{}
	d.Input = input
	link(d, input)
	return d
}

// ReplaceInput implements the Node interface.
func (d *Distinct) ReplaceInput(old, new Node) { d.replace(d, old, new) }

// Exprs implements the Node interface.
func (d *Distinct) Exprs() []Expression { return nil }

// Limit returns a window of its input.
type Limit struct {
	singleInput
	Offset, Count int
}

// NewLimit returns at most count rows of input after skipping offset.
func NewLimit(input Node, offset, count int) *Limit {
	l := &Limit{Offset: offset, Count: count}
	l.Input = input
	link(l, input)
	return l
}

// ReplaceInput implements the Node interface.
func (l *Limit) ReplaceInput(old, new Node) { l.replace(l, old, new) }

// Exprs implements the Node interface.
func (l *Limit) Exprs() []Expression { return nil }

// Subquery is a nested query. OuterTables lists the sources of enclosing
// queries it references, making it correlated.
type Subquery struct {
	singleInput
	OuterTables []ColumnSource
}

// NewSubquery returns a nested query over input.
func NewSubquery(input Node, outerTables ...ColumnSource) *Subquery {
	s := &Subquery{OuterTables: outerTables}
	s.Input = input
	link(s, input)
	return s
}

// Correlated returns true if the subquery references enclosing queries.
func (s *Subquery) Correlated() bool { return len(s.OuterTables) > 0 }

// ReplaceInput implements the Node interface.
func (s *Subquery) ReplaceInput(old, new Node) { s.replace(s, old, new) }

// Exprs implements the Node interface.
func (s *Subquery) Exprs() []Expression { return nil }

// JoinType is the type of a Join between two inputs.
type JoinType int8

// Join types.
const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
)

func (j JoinType) String() string {
	return [...]string{"INNER", "LEFT", "RIGHT", "FULL"}[j]
}

// Join combines two inputs that are not clustered together, such as two
// groups.
type Join struct {
	nodeBase
	Left, Right    Node
	JoinType       JoinType
	JoinConditions *ConditionList
}

// NewJoin returns left joined with right.
func NewJoin(left, right Node, joinType JoinType, conds *ConditionList) *Join {
	j := &Join{Left: left, Right: right, JoinType: joinType, JoinConditions: conds}
	link(j, left, right)
	return j
}

// Inputs implements the Node interface.
func (j *Join) Inputs() []Node { return []Node{j.Left, j.Right} }

// ReplaceInput implements the Node interface.
func (j *Join) ReplaceInput(old, new Node) {
	switch old {
	case j.Left:
		j.Left = new
	case j.Right:
		j.Right = new
	default:
		panic(errors.AssertionFailedf("%T is not an input of join", old))
	}
	new.setOutput(j)
}

// Exprs implements the Node interface.
func (j *Join) Exprs() []Expression { return conditionExprs(j.JoinConditions) }

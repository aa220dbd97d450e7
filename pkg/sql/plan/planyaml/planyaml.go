// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package planyaml builds plan fragments from a YAML description of a query
// shape over a cat.Schema. The format is
//
//	kind: select          # select, update, delete or insert
//	target: o             # the modified table, by alias
//	tables:
//	  - table: customers
//	    as: c
//	  - table: orders
//	    as: o
//	    required: false    # optional side of an outer join
//	outer:                 # tables bound by an enclosing query
//	  - table: customers
//	    as: oc
//	join_on: [c.cid = o.cid]
//	where: [c.name = Smith, "o.odate > $1 OR o.odate IS NULL"]
//	group_by: [c.name]
//	aggregates: [count(o.oid)]
//	order_by: [c.name DESC]
//	project: [c.name, count(o.oid)]
//	distinct: false
//	limit: 10
//
// Operands are alias.column references, $n parameters, NULL, true, false,
// numbers, name(arg, ...) function calls, or otherwise string literals.
// Conditions are comparisons (=, <>, !=, <, <=, >, >=), "x IS NULL" and
// "x IN (a, b)", combined with AND and OR. A join_on equality between a
// parent's primary key and the child's matching parent join column is
// marked as a group join.
//
// The plan is assembled as Query, Limit, Distinct, Project, Sort,
// AggregateSource, Select and the joins, omitting the nodes that are not
// needed. Projections and orderings above a grouping reference the grouping's
// output columns.
package planyaml

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/google/shlex"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
	"github.com/hkeyplan/hkeyplan/pkg/sql/types"
	"gopkg.in/yaml.v2"
)

type tableYAML struct {
	Table    string `yaml:"table"`
	As       string `yaml:"as"`
	Required *bool  `yaml:"required"`
}

type queryYAML struct {
	Kind       string      `yaml:"kind"`
	Target     string      `yaml:"target"`
	Tables     []tableYAML `yaml:"tables"`
	Outer      []tableYAML `yaml:"outer"`
	JoinOn     []string    `yaml:"join_on"`
	Where      []string    `yaml:"where"`
	GroupBy    []string    `yaml:"group_by"`
	Aggregates []string    `yaml:"aggregates"`
	OrderBy    []string    `yaml:"order_by"`
	Project    []string    `yaml:"project"`
	Distinct   bool        `yaml:"distinct"`
	Limit      int         `yaml:"limit"`
}

// Query is a parsed query shape. The node fields are nil when the query
// does not need them.
type Query struct {
	Root *plan.Query
	// Tables are the table sources joined by the query, in the order given.
	Tables []*plan.TableSource
	// Bound are the table sources of enclosing queries.
	Bound plan.TableSourceSet

	Select    *plan.Select
	Sort      *plan.Sort
	Aggregate *plan.AggregateSource
	Project   *plan.Project
	Distinct  *plan.Distinct

	joinTrees []*plan.TableGroupJoinTree
	join      *plan.Join
	aliases   map[string]*plan.TableSource
}

// Table returns the table source with the given alias, or nil.
func (q *Query) Table(alias string) *plan.TableSource {
	return q.aliases[alias]
}

// ConditionSources returns the WHERE conditions followed by the join
// conditions.
func (q *Query) ConditionSources() []*plan.ConditionList {
	var res []*plan.ConditionList
	if q.Select != nil {
		res = append(res, q.Select.Conditions)
	}
	for _, j := range q.joinTrees {
		res = append(res, j.JoinConditions)
	}
	if q.join != nil {
		res = append(res, q.join.JoinConditions)
	}
	return res
}

// RequiredTables returns the table sources that are not the optional side
// of an outer join.
func (q *Query) RequiredTables() plan.TableSourceSet {
	res := make(plan.TableSourceSet)
	for _, ts := range q.Tables {
		if ts.Required {
			res.Add(ts)
		}
	}
	return res
}

// ProjectDistinct returns the projection feeding a DISTINCT, or nil.
func (q *Query) ProjectDistinct() *plan.Project {
	if q.Distinct == nil {
		return nil
	}
	return q.Project
}

// Load parses a query shape over schema.
func Load(schema *cat.Schema, data []byte) (*Query, error) {
	var qy queryYAML
	if err := yaml.UnmarshalStrict(data, &qy); err != nil {
		return nil, errors.Wrap(err, "parsing query")
	}
	b := builder{schema: schema, q: &Query{
		Bound:   make(plan.TableSourceSet),
		aliases: make(map[string]*plan.TableSource),
	}}
	if err := b.build(&qy); err != nil {
		return nil, err
	}
	return b.q, nil
}

// LoadFile reads and parses the query shape file at path.
func LoadFile(schema *cat.Schema, path string) (*Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading query %s", path)
	}
	q, err := Load(schema, data)
	return q, errors.Wrapf(err, "loading query %s", path)
}

type builder struct {
	schema *cat.Schema
	q      *Query
}

func (b *builder) build(qy *queryYAML) error {
	if len(qy.Tables) == 0 {
		return errors.New("query has no tables")
	}
	if err := b.addTables(qy.Outer, true /* outer */); err != nil {
		return err
	}
	if err := b.addTables(qy.Tables, false /* outer */); err != nil {
		return err
	}

	var joinConds []plan.Condition
	for _, s := range qy.JoinOn {
		c, err := b.condition(s)
		if err != nil {
			return errors.Wrap(err, "join_on")
		}
		b.markGroupJoin(c)
		joinConds = append(joinConds, c)
	}
	var input plan.Node
	for _, g := range b.groupsOf(b.q.Tables) {
		var conds, rest []plan.Condition
		for _, c := range joinConds {
			if b.within(c, g) {
				conds = append(conds, c)
			} else {
				rest = append(rest, c)
			}
		}
		joinConds = rest
		tree := plan.NewTableGroupJoinTree(g, plan.NewConditionList(conds...))
		b.q.joinTrees = append(b.q.joinTrees, tree)
		if input == nil {
			input = tree
			continue
		}
		b.q.join = plan.NewJoin(input, tree, plan.InnerJoin, plan.NewConditionList())
		input = b.q.join
	}
	// Conditions spanning groups, or referencing the enclosing query, belong
	// to the topmost join.
	if len(joinConds) > 0 {
		if b.q.join != nil {
			b.q.join.JoinConditions.Conditions = joinConds
		} else {
			tree := b.q.joinTrees[0]
			tree.JoinConditions.Conditions = append(tree.JoinConditions.Conditions, joinConds...)
		}
	}

	if len(qy.Where) > 0 {
		var conds []plan.Condition
		for _, s := range qy.Where {
			c, err := b.condition(s)
			if err != nil {
				return errors.Wrap(err, "where")
			}
			conds = append(conds, c)
		}
		b.q.Select = plan.NewSelect(input, plan.NewConditionList(conds...))
		input = b.q.Select
	}

	if len(qy.GroupBy) > 0 || len(qy.Aggregates) > 0 {
		groupBy, err := b.exprs(qy.GroupBy)
		if err != nil {
			return errors.Wrap(err, "group_by")
		}
		aggs, err := b.exprs(qy.Aggregates)
		if err != nil {
			return errors.Wrap(err, "aggregates")
		}
		b.q.Aggregate = plan.NewAggregateSource(input, groupBy, aggs)
		input = b.q.Aggregate
	}

	if len(qy.OrderBy) > 0 {
		orderBy := make([]plan.OrderByExpr, len(qy.OrderBy))
		for i, s := range qy.OrderBy {
			fields, err := shlex.Split(s)
			if err != nil || len(fields) == 0 || len(fields) > 2 {
				return errors.Newf("order_by: malformed term %q", s)
			}
			orderBy[i].Ascending = true
			if len(fields) == 2 {
				switch strings.ToUpper(fields[1]) {
				case "ASC":
				case "DESC":
					orderBy[i].Ascending = false
				default:
					return errors.Newf("order_by: unexpected %q in term %q", fields[1], s)
				}
			}
			e, err := b.operand(fields[0])
			if err != nil {
				return errors.Wrap(err, "order_by")
			}
			if orderBy[i].Expr, err = b.aboveGrouping(e); err != nil {
				return errors.Wrap(err, "order_by")
			}
		}
		b.q.Sort = plan.NewSort(input, orderBy)
		input = b.q.Sort
	}

	if len(qy.Project) > 0 {
		fields, err := b.exprs(qy.Project)
		if err != nil {
			return errors.Wrap(err, "project")
		}
		for i := range fields {
			if fields[i], err = b.aboveGrouping(fields[i]); err != nil {
				return errors.Wrap(err, "project")
			}
		}
		b.q.Project = plan.NewProject(input, fields)
		input = b.q.Project
	}
	if qy.Distinct {
		if b.q.Project == nil {
			return errors.WithHint(errors.New("distinct needs a projection"), "list the distinct columns under project")
		}
		b.q.Distinct = plan.NewDistinct(input)
		input = b.q.Distinct
	}
	if qy.Limit > 0 {
		input = plan.NewLimit(input, 0, qy.Limit)
	}

	var kind plan.QueryKind
	switch strings.ToLower(qy.Kind) {
	case "", "select":
		kind = plan.SelectQuery
	case "update":
		kind = plan.UpdateQuery
	case "delete":
		kind = plan.DeleteQuery
	case "insert":
		kind = plan.InsertQuery
	default:
		return errors.Newf("unknown query kind %q", qy.Kind)
	}
	var target *cat.Table
	if qy.Target != "" {
		ts := b.q.aliases[qy.Target]
		if ts == nil || b.q.Bound.Contains(ts) {
			return errors.Newf("target %q is not a table of the query", qy.Target)
		}
		target = ts.Table
	} else if kind == plan.UpdateQuery || kind == plan.DeleteQuery {
		return errors.Newf("%s query needs a target", kind)
	}
	b.q.Root = plan.NewQuery(kind, target, input)
	return nil
}

// addTables creates the table sources of entries.
func (b *builder) addTables(entries []tableYAML, outer bool) error {
	var sources []*plan.TableSource
	for _, ty := range entries {
		tab := b.schema.Table(ty.Table)
		if tab == nil {
			return errors.Newf("table %q does not exist", ty.Table)
		}
		alias := ty.As
		if alias == "" {
			alias = ty.Table
		}
		if _, ok := b.q.aliases[alias]; ok {
			return errors.WithHint(
				errors.Newf("table name %q specified more than once", alias),
				"give each occurrence a distinct alias with as:",
			)
		}
		ts := &plan.TableSource{Table: tab, Required: ty.Required == nil || *ty.Required}
		b.q.aliases[alias] = ts
		sources = append(sources, ts)
	}
	// Sources of one group find their parents through the group.
	for _, g := range b.groupsOf(sources) {
		for _, ts := range g.Tables {
			ts.Group = g
		}
	}
	if outer {
		for _, ts := range sources {
			b.q.Bound.Add(ts)
		}
	} else {
		b.q.Tables = sources
	}
	return nil
}

// groupsOf partitions sources by group, in order of first appearance. It
// returns the groups already assigned when sources have one.
func (b *builder) groupsOf(sources []*plan.TableSource) []*plan.TableGroup {
	var res []*plan.TableGroup
	for _, ts := range sources {
		if ts.Group != nil {
			found := false
			for _, g := range res {
				found = found || g == ts.Group
			}
			if !found {
				res = append(res, ts.Group)
			}
			continue
		}
		var g *plan.TableGroup
		for _, existing := range res {
			if existing.Group == ts.Table.Group() {
				g = existing
			}
		}
		if g == nil {
			g = &plan.TableGroup{Group: ts.Table.Group()}
			res = append(res, g)
		}
		g.Tables = append(g.Tables, ts)
	}
	return res
}

// within returns true if every column c references belongs to g.
func (b *builder) within(c plan.Condition, g *plan.TableGroup) bool {
	sources, _ := plan.ReferencedSources(c)
	for _, s := range sources {
		ts, ok := s.(*plan.TableSource)
		if !ok || ts.Group != g {
			return false
		}
	}
	return true
}

func (b *builder) markGroupJoin(c plan.Condition) {
	cmp, ok := c.(*plan.ComparisonCondition)
	if !ok || cmp.Op != plan.EQ {
		return
	}
	l, lok := cmp.Left.(*plan.ColumnExpr)
	r, rok := cmp.Right.(*plan.ColumnExpr)
	if !lok || !rok || l.TableSource() == nil || r.TableSource() == nil {
		return
	}
	if isParentJoin(l, r) || isParentJoin(r, l) {
		cmp.SetImplementation(plan.ImplementationGroupJoin)
	}
}

func isParentJoin(parent, child *plan.ColumnExpr) bool {
	pts, cts := parent.TableSource(), child.TableSource()
	if cts.ParentTable() != pts {
		return false
	}
	for i, pk := range pts.Table.PrimaryKey {
		if pk == parent.Column && cts.Table.ParentJoinColumns[i] == child.Column {
			return true
		}
	}
	return false
}

func (b *builder) exprs(entries []string) ([]plan.Expression, error) {
	res := make([]plan.Expression, len(entries))
	for i, s := range entries {
		fields, err := shlex.Split(s)
		if err != nil {
			return nil, errors.Wrapf(err, "expression %q", s)
		}
		if res[i], err = b.operand(strings.Join(fields, " ")); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// aboveGrouping rewrites e to reference the grouping's output.
func (b *builder) aboveGrouping(e plan.Expression) (plan.Expression, error) {
	agg := b.q.Aggregate
	if agg == nil {
		return e, nil
	}
	n := len(agg.GroupBy) + len(agg.Aggregates)
	for i := 0; i < n; i++ {
		if plan.ExprEqual(e, agg.Field(i)) {
			return agg.ColumnRef(i), nil
		}
	}
	if sources, _ := plan.ReferencedSources(e); len(sources) == 0 {
		return e, nil
	}
	return nil, errors.Newf("%s must appear in group_by or aggregates", e)
}

func (b *builder) condition(s string) (plan.Condition, error) {
	tokens, err := shlex.Split(s)
	if err != nil {
		return nil, errors.Wrapf(err, "condition %q", s)
	}
	c, err := b.logical(tokens, plan.Or)
	return c, errors.Wrapf(err, "condition %q", s)
}

// logical splits tokens on op and combines the parts left to right. OR
// binds looser than AND.
func (b *builder) logical(tokens []string, op plan.LogicalOp) (plan.Condition, error) {
	var res plan.Condition
	start := 0
	for i := 0; i <= len(tokens); i++ {
		if i < len(tokens) && !strings.EqualFold(tokens[i], op.String()) {
			continue
		}
		var part plan.Condition
		var err error
		if op == plan.Or {
			part, err = b.logical(tokens[start:i], plan.And)
		} else {
			part, err = b.atom(tokens[start:i])
		}
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = part
		} else {
			res = plan.NewLogical(res, op, part)
		}
		start = i + 1
	}
	return res, nil
}

var comparisons = map[string]plan.Comparison{
	"=": plan.EQ, "<>": plan.NE, "!=": plan.NE,
	"<": plan.LT, "<=": plan.LE, ">": plan.GT, ">=": plan.GE,
}

func (b *builder) atom(tokens []string) (plan.Condition, error) {
	if len(tokens) < 3 {
		return nil, errors.Newf("malformed condition %q", strings.Join(tokens, " "))
	}
	left, err := b.operand(tokens[0])
	if err != nil {
		return nil, err
	}
	switch strings.ToUpper(tokens[1]) {
	case "IS":
		if len(tokens) != 3 || !strings.EqualFold(tokens[2], "NULL") {
			return nil, errors.Newf("expected IS NULL, found %q", strings.Join(tokens[1:], " "))
		}
		return plan.NewIsNull(left), nil
	case "IN":
		list := strings.TrimSpace(strings.Join(tokens[2:], " "))
		if !strings.HasPrefix(list, "(") || !strings.HasSuffix(list, ")") {
			return nil, errors.Newf("IN list %q must be parenthesized", list)
		}
		cond := &plan.InListCondition{Operand: left}
		for _, item := range strings.Split(list[1:len(list)-1], ",") {
			e, err := b.operand(strings.TrimSpace(item))
			if err != nil {
				return nil, err
			}
			cond.List = append(cond.List, e)
		}
		return cond, nil
	}
	op, ok := comparisons[tokens[1]]
	if !ok {
		return nil, errors.Newf("unknown comparison %q", tokens[1])
	}
	if len(tokens) != 3 {
		return nil, errors.Newf("unexpected %q after comparison", strings.Join(tokens[3:], " "))
	}
	right, err := b.operand(tokens[2])
	if err != nil {
		return nil, err
	}
	return plan.NewComparison(left, op, right), nil
}

func (b *builder) operand(s string) (plan.Expression, error) {
	if s == "" {
		return nil, errors.New("empty operand")
	}
	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		fn := &plan.FunctionExpr{Name: s[:open]}
		if args := strings.TrimSpace(s[open+1 : len(s)-1]); args != "" {
			for _, arg := range strings.Split(args, ",") {
				e, err := b.operand(strings.TrimSpace(arg))
				if err != nil {
					return nil, err
				}
				fn.Operands = append(fn.Operands, e)
			}
		}
		fn.Typ = types.Int
		if !strings.EqualFold(fn.Name, "count") && len(fn.Operands) > 0 {
			fn.Typ = fn.Operands[0].Type()
		}
		return fn, nil
	}
	if s[0] == '$' {
		n, err := strconv.Atoi(s[1:])
		if err != nil || n <= 0 {
			return nil, errors.Newf("malformed parameter %q", s)
		}
		return &plan.ParamExpr{Index: n, Typ: types.Unknown}, nil
	}
	if dot := strings.IndexByte(s, '.'); dot > 0 {
		if ts, ok := b.q.aliases[s[:dot]]; ok {
			col := ts.Column(s[dot+1:])
			if col == nil {
				return nil, errors.Newf("column %q does not exist in table %q", s[dot+1:], ts.Table.Name)
			}
			return col, nil
		}
	}
	switch strings.ToLower(s) {
	case "null":
		return plan.NewConstExpr(nil), nil
	case "true":
		return plan.NewConstExpr(true), nil
	case "false":
		return plan.NewConstExpr(false), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return plan.NewConstExpr(i), nil
	}
	if strings.ContainsAny(s[:1], "+-.0123456789") {
		if d, _, err := apd.NewFromString(s); err == nil {
			return plan.NewConstExpr(d), nil
		}
	}
	return plan.NewConstExpr(s), nil
}

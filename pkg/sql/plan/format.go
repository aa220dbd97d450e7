// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// Format renders the plan rooted at n as an indented tree.
func Format(n Node) string {
	tree := treeprint.NewWithRoot(describe(n))
	for _, in := range n.Inputs() {
		formatNode(tree, in)
	}
	return tree.String()
}

func formatNode(tree treeprint.Tree, n Node) {
	if n == nil {
		return
	}
	inputs := n.Inputs()
	if len(inputs) == 0 {
		tree.AddNode(describe(n))
		return
	}
	branch := tree.AddBranch(describe(n))
	for _, in := range inputs {
		formatNode(branch, in)
	}
}

func describe(n Node) string {
	switch t := n.(type) {
	case *Query:
		if t.Target != nil {
			return fmt.Sprintf("%s %s", t.Kind, t.Target.Name)
		}
		return t.Kind.String()
	case *TableSource:
		if t.Required {
			return "TableSource(" + t.Table.Name + ")"
		}
		return "TableSource(" + t.Table.Name + ", optional)"
	case *TableGroupJoinTree:
		return "TableGroupJoinTree(" + t.Group.Group.Name + ")"
	case *Join:
		return fmt.Sprintf("Join(%s, %s)", t.JoinType, FormatExprs(conditionExprs(t.JoinConditions)))
	case *Select:
		return "Select(" + FormatExprs(conditionExprs(t.Conditions)) + ")"
	case *Sort:
		parts := make([]string, len(t.OrderBy))
		for i := range t.OrderBy {
			parts[i] = t.OrderBy[i].String()
		}
		return "Sort(" + strings.Join(parts, ", ") + ")"
	case *AggregateSource:
		s := fmt.Sprintf("AggregateSource(%s)", FormatExprs(t.Exprs()))
		if t.Implementation != AggregateUnknown {
			s += " " + t.Implementation.String()
		}
		return s
	case *Project:
		return "Project(" + FormatExprs(t.Fields) + ")"
	case *Distinct:
		if t.Implementation != DistinctUnknown {
			return "Distinct " + t.Implementation.String()
		}
		return "Distinct"
	case *Limit:
		return fmt.Sprintf("Limit(%d, %d)", t.Offset, t.Count)
	case *Subquery:
		if t.Correlated() {
			return "Subquery correlated"
		}
		return "Subquery"
	}
	return fmt.Sprintf("%T", n)
}

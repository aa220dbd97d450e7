// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// ExprEqual returns true if a and b are structurally the same expression.
// Column references are equal when they name the same column of the same
// source; literals are equal when their values compare equal.
func ExprEqual(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	switch a := a.(type) {
	case *ColumnExpr:
		b, ok := b.(*ColumnExpr)
		return ok && a.Key() == b.Key()
	case *ConstExpr:
		b, ok := b.(*ConstExpr)
		if !ok {
			return false
		}
		if a.Value == nil || b.Value == nil {
			return a.Value == nil && b.Value == nil
		}
		cmp, ok := CompareConstants(a, b)
		return ok && cmp == 0
	case *ParamExpr:
		b, ok := b.(*ParamExpr)
		return ok && a.Index == b.Index
	case *FunctionExpr:
		b, ok := b.(*FunctionExpr)
		return ok && a.Name == b.Name && exprsEqual(a.Operands, b.Operands)
	case *SubqueryExpr:
		b, ok := b.(*SubqueryExpr)
		return ok && a.Subquery == b.Subquery
	case *ComparisonCondition:
		b, ok := b.(*ComparisonCondition)
		return ok && a.Op == b.Op && ExprEqual(a.Left, b.Left) && ExprEqual(a.Right, b.Right)
	case *FunctionCondition:
		b, ok := b.(*FunctionCondition)
		return ok && a.Function == b.Function && exprsEqual(a.Operands, b.Operands)
	case *LogicalCondition:
		b, ok := b.(*LogicalCondition)
		return ok && a.Op == b.Op && ExprEqual(a.Left, b.Left) && ExprEqual(a.Right, b.Right)
	case *InListCondition:
		b, ok := b.(*InListCondition)
		return ok && ExprEqual(a.Operand, b.Operand) && exprsEqual(a.List, b.List)
	}
	return false
}

func exprsEqual(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ExprEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ContainsExpr returns true if list holds an expression equal to e.
func ContainsExpr(list []Expression, e Expression) bool {
	for _, x := range list {
		if ExprEqual(x, e) {
			return true
		}
	}
	return false
}

// CompareConstants orders two non-NULL literals. Numbers of different kinds
// compare by value. The second result is false when the values cannot be
// compared, as for a string and a number.
func CompareConstants(a, b *ConstExpr) (int, bool) {
	if da, ok := decimalValue(a.Value); ok {
		db, ok := decimalValue(b.Value)
		if !ok {
			return 0, false
		}
		return da.Cmp(db), true
	}
	switch av := a.Value.(type) {
	case string:
		bv, ok := b.Value.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.Value.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func decimalValue(v interface{}) (*apd.Decimal, bool) {
	switch v := v.(type) {
	case int64:
		return apd.New(v, 0), true
	case float64:
		d := new(apd.Decimal)
		if _, err := d.SetFloat64(v); err != nil {
			return nil, false
		}
		return d, true
	case *apd.Decimal:
		return v, true
	}
	return nil, false
}

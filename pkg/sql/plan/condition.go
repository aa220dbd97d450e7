// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

import (
	"github.com/cockroachdb/redact"
	"github.com/hkeyplan/hkeyplan/pkg/sql/types"
)

// Comparison is the operator of a ComparisonCondition.
type Comparison int8

// Comparison operators.
const (
	EQ Comparison = iota
	NE
	LT
	LE
	GT
	GE
)

var comparisonNames = [...]string{EQ: "=", NE: "<>", LT: "<", LE: "<=", GT: ">", GE: ">="}

func (c Comparison) String() string { return comparisonNames[c] }

// SafeValue implements the redact.SafeValue interface.
func (Comparison) SafeValue() {}

// Reverse returns the operator that holds with the operands swapped.
func (c Comparison) Reverse() Comparison {
	switch c {
	case LT:
		return GT
	case LE:
		return GE
	case GT:
		return LT
	case GE:
		return LE
	}
	return c
}

// ConditionImplementation tells how a condition will be evaluated.
type ConditionImplementation int8

const (
	// ImplementationNormal conditions are evaluated as filters.
	ImplementationNormal ConditionImplementation = iota
	// ImplementationGroupJoin conditions are satisfied by the group's
	// physical clustering of a child under its parent.
	ImplementationGroupJoin
)

// Condition is a boolean expression that filters rows.
type Condition interface {
	Expression
	// Implementation returns how the condition is evaluated.
	Implementation() ConditionImplementation
}

type conditionBase struct {
	impl ConditionImplementation
}

// Implementation implements the Condition interface.
func (c *conditionBase) Implementation() ConditionImplementation { return c.impl }

// SetImplementation changes how the condition is evaluated.
func (c *conditionBase) SetImplementation(impl ConditionImplementation) { c.impl = impl }

// Type implements the Expression interface.
func (c *conditionBase) Type() *types.T { return types.Bool }

// ComparisonCondition compares two operands.
type ComparisonCondition struct {
	conditionBase
	Op          Comparison
	Left, Right Expression
}

var _ Condition = &ComparisonCondition{}

// NewComparison returns left op right.
func NewComparison(left Expression, op Comparison, right Expression) *ComparisonCondition {
	return &ComparisonCondition{Op: op, Left: left, Right: right}
}

func (c *ComparisonCondition) walk(fn func(Expression)) {
	fn(c.Left)
	fn(c.Right)
}

// SafeFormat implements the redact.SafeFormatter interface.
func (c *ComparisonCondition) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s %s %s", c.Left, c.Op, c.Right)
}

func (c *ComparisonCondition) String() string { return redact.StringWithoutMarkers(c) }

// IsNullFunction is the function name of an IS NULL test.
const IsNullFunction = "isNull"

// FunctionCondition is a boolean function such as isNull.
type FunctionCondition struct {
	conditionBase
	Function string
	Operands []Expression
}

var _ Condition = &FunctionCondition{}

// NewIsNull returns the condition operand IS NULL.
func NewIsNull(operand Expression) *FunctionCondition {
	return &FunctionCondition{Function: IsNullFunction, Operands: []Expression{operand}}
}

func (c *FunctionCondition) walk(fn func(Expression)) {
	for _, op := range c.Operands {
		fn(op)
	}
}

// SafeFormat implements the redact.SafeFormatter interface.
func (c *FunctionCondition) SafeFormat(w redact.SafePrinter, _ rune) {
	if c.Function == IsNullFunction && len(c.Operands) == 1 {
		w.Printf("%s IS NULL", c.Operands[0])
		return
	}
	w.Print(redact.SafeString(c.Function))
	formatList(w, c.Operands)
}

func (c *FunctionCondition) String() string { return redact.StringWithoutMarkers(c) }

// LogicalOp is the operator of a LogicalCondition.
type LogicalOp int8

// Logical operators.
const (
	And LogicalOp = iota
	Or
)

func (op LogicalOp) String() string {
	if op == And {
		return "AND"
	}
	return "OR"
}

// SafeValue implements the redact.SafeValue interface.
func (LogicalOp) SafeValue() {}

// LogicalCondition combines two conditions.
type LogicalCondition struct {
	conditionBase
	Op          LogicalOp
	Left, Right Condition
}

var _ Condition = &LogicalCondition{}

// NewLogical returns left op right.
func NewLogical(left Condition, op LogicalOp, right Condition) *LogicalCondition {
	return &LogicalCondition{Op: op, Left: left, Right: right}
}

func (c *LogicalCondition) walk(fn func(Expression)) {
	fn(c.Left)
	fn(c.Right)
}

// SafeFormat implements the redact.SafeFormatter interface.
func (c *LogicalCondition) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("(%s %s %s)", c.Left, c.Op, c.Right)
}

func (c *LogicalCondition) String() string { return redact.StringWithoutMarkers(c) }

// InListCondition tests membership of an operand in a list.
type InListCondition struct {
	conditionBase
	Operand Expression
	List    []Expression
}

var _ Condition = &InListCondition{}

func (c *InListCondition) walk(fn func(Expression)) {
	fn(c.Operand)
	for _, e := range c.List {
		fn(e)
	}
}

// SafeFormat implements the redact.SafeFormatter interface.
func (c *InListCondition) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s IN ", c.Operand)
	formatList(w, c.List)
}

func (c *InListCondition) String() string { return redact.StringWithoutMarkers(c) }

// ConditionList is a conjunction of conditions owned by a plan node.
type ConditionList struct {
	Conditions []Condition
}

// NewConditionList returns a list holding conds.
func NewConditionList(conds ...Condition) *ConditionList {
	return &ConditionList{Conditions: conds}
}

// Len returns the number of conditions.
func (l *ConditionList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Conditions)
}

// Remove deletes c, compared by identity, and reports whether it was found.
func (l *ConditionList) Remove(c Condition) bool {
	for i, existing := range l.Conditions {
		if existing == c {
			l.Conditions = append(l.Conditions[:i:i], l.Conditions[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether c, compared by identity, is in the list.
func (l *ConditionList) Contains(c Condition) bool {
	for _, existing := range l.Conditions {
		if existing == c {
			return true
		}
	}
	return false
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/redact"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/types"
)

// Expression is a scalar expression of the plan. Every implementation is a
// pointer type, so expressions can be compared by identity.
type Expression interface {
	redact.SafeFormatter
	fmt.Stringer
	// Type returns the result type.
	Type() *types.T
	// walk calls fn on each direct child expression.
	walk(fn func(Expression))
}

// ColumnSource is something whose columns an expression can reference: a
// table source in a join, or a derived source such as an aggregation.
type ColumnSource interface {
	// SourceName returns the name used when rendering column references.
	SourceName() string
}

// ColumnExpr references a column of a source. Columns of table sources set
// Column; columns of derived sources only have a Position.
type ColumnExpr struct {
	Source   ColumnSource
	Column   *cat.Column
	Position int
	Typ      *types.T
}

var _ Expression = &ColumnExpr{}

// NewColumnExpr references column c of table source ts.
func NewColumnExpr(ts *TableSource, c *cat.Column) *ColumnExpr {
	return &ColumnExpr{Source: ts, Column: c, Position: c.Ordinal, Typ: c.Type}
}

// ColumnKey identifies a column of a source.
type ColumnKey struct {
	Source   ColumnSource
	Position int
}

// Key returns the identity of the referenced column.
func (e *ColumnExpr) Key() ColumnKey {
	return ColumnKey{Source: e.Source, Position: e.Position}
}

// TableSource returns the table source of the column, or nil when the column
// belongs to some other kind of source.
func (e *ColumnExpr) TableSource() *TableSource {
	ts, _ := e.Source.(*TableSource)
	return ts
}

// Type implements the Expression interface.
func (e *ColumnExpr) Type() *types.T { return e.Typ }

func (e *ColumnExpr) walk(func(Expression)) {}

// SafeFormat implements the redact.SafeFormatter interface.
func (e *ColumnExpr) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(e.Source.SourceName()))
	w.SafeRune('.')
	if e.Column != nil {
		w.Print(redact.SafeString(e.Column.Name))
	} else {
		w.Printf("[%d]", redact.Safe(e.Position))
	}
}

func (e *ColumnExpr) String() string { return redact.StringWithoutMarkers(e) }

// ConstExpr is a literal. Value is nil (SQL NULL), bool, int64, float64,
// string or *apd.Decimal.
type ConstExpr struct {
	Value interface{}
	Typ   *types.T
}

var _ Expression = &ConstExpr{}

// NewConstExpr wraps a literal, inferring its type from the Go value.
func NewConstExpr(v interface{}) *ConstExpr {
	var typ *types.T
	switch v.(type) {
	case nil:
		typ = types.Unknown
	case bool:
		typ = types.Bool
	case int64:
		typ = types.Int
	case float64:
		typ = types.Float
	case string:
		typ = types.String
	case *apd.Decimal:
		typ = types.Decimal
	default:
		panic(fmt.Sprintf("unsupported constant %T", v))
	}
	return &ConstExpr{Value: v, Typ: typ}
}

// Type implements the Expression interface.
func (e *ConstExpr) Type() *types.T { return e.Typ }

func (e *ConstExpr) walk(func(Expression)) {}

// SafeFormat implements the redact.SafeFormatter interface. Literals are
// user data and are printed as unsafe.
func (e *ConstExpr) SafeFormat(w redact.SafePrinter, _ rune) {
	switch v := e.Value.(type) {
	case nil:
		w.SafeString("NULL")
	case string:
		w.Print("'" + v + "'")
	case int64:
		w.Print(strconv.FormatInt(v, 10))
	case float64:
		w.Print(strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		w.Print(strconv.FormatBool(v))
	case *apd.Decimal:
		w.Print(v.String())
	}
}

func (e *ConstExpr) String() string { return redact.StringWithoutMarkers(e) }

// ParamExpr is a statement parameter, $1 and up.
type ParamExpr struct {
	Index int
	Typ   *types.T
}

var _ Expression = &ParamExpr{}

// Type implements the Expression interface.
func (e *ParamExpr) Type() *types.T { return e.Typ }

func (e *ParamExpr) walk(func(Expression)) {}

// SafeFormat implements the redact.SafeFormatter interface.
func (e *ParamExpr) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("$%d", redact.Safe(e.Index))
}

func (e *ParamExpr) String() string { return redact.StringWithoutMarkers(e) }

// FunctionExpr applies a named scalar function.
type FunctionExpr struct {
	Name     string
	Operands []Expression
	Typ      *types.T
}

var _ Expression = &FunctionExpr{}

// Type implements the Expression interface.
func (e *FunctionExpr) Type() *types.T { return e.Typ }

func (e *FunctionExpr) walk(fn func(Expression)) {
	for _, op := range e.Operands {
		fn(op)
	}
}

// SafeFormat implements the redact.SafeFormatter interface.
func (e *FunctionExpr) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(e.Name))
	formatList(w, e.Operands)
}

func (e *FunctionExpr) String() string { return redact.StringWithoutMarkers(e) }

// SubqueryExpr is a scalar subquery.
type SubqueryExpr struct {
	Subquery *Subquery
	Typ      *types.T
}

var _ Expression = &SubqueryExpr{}

// Type implements the Expression interface.
func (e *SubqueryExpr) Type() *types.T { return e.Typ }

func (e *SubqueryExpr) walk(func(Expression)) {}

// SafeFormat implements the redact.SafeFormatter interface.
func (e *SubqueryExpr) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("SUBQUERY")
}

func (e *SubqueryExpr) String() string { return redact.StringWithoutMarkers(e) }

func formatList(w redact.SafePrinter, exprs []Expression) {
	w.SafeRune('(')
	for i, e := range exprs {
		if i > 0 {
			w.SafeString(", ")
		}
		w.Print(e)
	}
	w.SafeRune(')')
}

// FormatExprs renders a list of expressions separated by commas.
func FormatExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		if e == nil {
			parts[i] = "?"
		} else {
			parts[i] = e.String()
		}
	}
	return strings.Join(parts, ", ")
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package rowtype describes the shapes of rows flowing through a query plan
// over hierarchically clustered tables. Base tables, their hkeys and their
// indexes have canonical row types owned by a Schema; derived row types
// (flatten, product, aggregate, project, values, buffer) are allocated fresh
// by the plan builder.
package rowtype

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/types"
)

// TypeID uniquely identifies a row type within a Schema. Ids are allocated
// from 1 and never reused.
type TypeID int32

// SafeValue implements the redact.SafeValue interface.
func (TypeID) SafeValue() {}

// Kind identifies the variant of a RowType.
type Kind int8

const (
	// TableKind is the row type of a base table.
	TableKind Kind = iota
	// IndexKind is the row type of a table or group index entry.
	IndexKind
	// HKeyKind is the row type holding a table's hierarchical key.
	HKeyKind
	// FlattenedKind joins a parent row with a child row.
	FlattenedKind
	// ProductKind combines two sibling branches under a shared ancestor.
	ProductKind
	// AggregatedKind keeps a prefix of its input and appends aggregates.
	AggregatedKind
	// ProjectedKind is an arbitrary list of computed fields.
	ProjectedKind
	// ValuesKind is a list of literal fields.
	ValuesKind
	// BufferKind prefixes its base row with a row id.
	BufferKind
)

var kindNames = [...]string{
	TableKind:      "table",
	IndexKind:      "index",
	HKeyKind:       "hkey",
	FlattenedKind:  "flatten",
	ProductKind:    "product",
	AggregatedKind: "aggregate",
	ProjectedKind:  "project",
	ValuesKind:     "values",
	BufferKind:     "buffer",
}

func (k Kind) String() string {
	return kindNames[k]
}

// SafeValue implements the redact.SafeValue interface.
func (Kind) SafeValue() {}

// JoinType is the join a flattened row type was built for.
type JoinType int8

const (
	// InnerJoin keeps only parent and child rows that match.
	InnerJoin JoinType = iota
	// LeftJoin keeps parents without children.
	LeftJoin
	// RightJoin keeps orphan children.
	RightJoin
	// FullJoin keeps both.
	FullJoin
)

var joinTypeNames = [...]string{
	InnerJoin: "INNER",
	LeftJoin:  "LEFT",
	RightJoin: "RIGHT",
	FullJoin:  "FULL",
}

func (j JoinType) String() string {
	return joinTypeNames[j]
}

// SafeValue implements the redact.SafeValue interface.
func (JoinType) SafeValue() {}

// RowType is the shape of a row: its field count and field types, and for
// rows derived from base tables, the tables that contribute to it. Two row
// types are equal iff their ids are equal. A RowType is immutable.
type RowType struct {
	id   TypeID
	kind Kind
	comp *TypeComposition
	hkey *cat.HKey

	// Set for TableKind and HKeyKind.
	table *cat.Table
	// Set for IndexKind.
	index *cat.Index

	// first and second are the inputs of FlattenedKind and ProductKind.
	// AggregatedKind and BufferKind keep their base in first.
	first, second *RowType
	// branch is the shared ancestor row type of a product.
	branch   *RowType
	joinType JoinType

	// types holds the field types of ProjectedKind and ValuesKind, and the
	// aggregate result types of AggregatedKind.
	types []*types.T
	// inputsIndex is the number of base fields kept by AggregatedKind.
	inputsIndex int
}

// ID returns the row type's identity.
func (r *RowType) ID() TypeID {
	return r.id
}

// Kind returns the variant of the row type.
func (r *RowType) Kind() Kind {
	return r.kind
}

// Table returns the table of a table or hkey row type, and nil otherwise.
func (r *RowType) Table() *cat.Table {
	return r.table
}

// Index returns the index of an index row type, and nil otherwise.
func (r *RowType) Index() *cat.Index {
	return r.index
}

// First returns the first input of a flattened or product row type, or the
// base of an aggregated or buffer row type.
func (r *RowType) First() *RowType {
	return r.first
}

// Second returns the second input of a flattened or product row type.
func (r *RowType) Second() *RowType {
	return r.second
}

// Branch returns the shared ancestor row type of a product.
func (r *RowType) Branch() *RowType {
	return r.branch
}

// JoinType returns the join a flattened row type was built for.
func (r *RowType) JoinType() JoinType {
	return r.joinType
}

// Composition returns the tables contributing to the row, or nil for rows
// with no table affiliation.
func (r *RowType) Composition() *TypeComposition {
	return r.comp
}

// HKey returns the hierarchical key carried by rows of this type, or nil.
func (r *RowType) HKey() *cat.HKey {
	return r.hkey
}

// NFields returns the number of fields.
func (r *RowType) NFields() int {
	switch r.kind {
	case TableKind:
		return len(r.table.Columns)
	case IndexKind:
		return len(r.index.AllColumns())
	case HKeyKind:
		return r.table.HKey().NColumns()
	case FlattenedKind:
		return r.first.NFields() + r.second.NFields()
	case ProductKind:
		return r.first.NFields() + r.second.NFields() - r.branch.NFields()
	case AggregatedKind:
		return r.inputsIndex + len(r.types)
	case ProjectedKind, ValuesKind:
		return len(r.types)
	case BufferKind:
		return 1 + r.first.NFields()
	}
	panic(errors.AssertionFailedf("unhandled row type kind %s", r.kind))
}

// TypeAt returns the type of field i.
func (r *RowType) TypeAt(i int) *types.T {
	if i < 0 || i >= r.NFields() {
		panic(errors.AssertionFailedf("field %d out of range for %s", i, r))
	}
	switch r.kind {
	case TableKind:
		return r.table.Columns[i].Type
	case IndexKind:
		return r.index.AllColumns()[i].Column.Type
	case HKeyKind:
		return r.table.HKey().Columns()[i].Type
	case FlattenedKind:
		if n := r.first.NFields(); i >= n {
			return r.second.TypeAt(i - n)
		}
		return r.first.TypeAt(i)
	case ProductKind:
		if n := r.first.NFields(); i >= n {
			return r.second.TypeAt(i - n + r.branch.NFields())
		}
		return r.first.TypeAt(i)
	case AggregatedKind:
		if i >= r.inputsIndex {
			return r.types[i-r.inputsIndex]
		}
		return r.first.TypeAt(i)
	case ProjectedKind, ValuesKind:
		return r.types[i]
	case BufferKind:
		if i == 0 {
			return types.Int
		}
		return r.first.TypeAt(i - 1)
	}
	panic(errors.AssertionFailedf("unhandled row type kind %s", r.kind))
}

// FieldColumn returns the base column that field i carries unchanged, if
// there is one.
func (r *RowType) FieldColumn(i int) (*cat.Column, bool) {
	switch r.kind {
	case TableKind:
		return r.table.Columns[i], true
	case IndexKind:
		return r.index.AllColumns()[i].Column, true
	case HKeyKind:
		return r.table.HKey().Columns()[i], true
	case FlattenedKind:
		if n := r.first.NFields(); i >= n {
			return r.second.FieldColumn(i - n)
		}
		return r.first.FieldColumn(i)
	case ProductKind:
		if n := r.first.NFields(); i >= n {
			return r.second.FieldColumn(i - n + r.branch.NFields())
		}
		return r.first.FieldColumn(i)
	case AggregatedKind:
		if i < r.inputsIndex {
			return r.first.FieldColumn(i)
		}
	case BufferKind:
		if i > 0 {
			return r.first.FieldColumn(i - 1)
		}
	}
	return nil, false
}

// SafeFormat implements the redact.SafeFormatter interface.
func (r *RowType) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(r.kind)
	w.SafeRune('(')
	switch r.kind {
	case TableKind, HKeyKind:
		w.Print(r.table)
	case IndexKind:
		w.Print(r.index)
	case FlattenedKind:
		w.Printf("%s, %s", r.first, r.second)
		if r.joinType != InnerJoin {
			w.Printf(", %s", r.joinType)
		}
	case ProductKind:
		w.Printf("%s, %s, %s", r.first, r.branch, r.second)
	case AggregatedKind:
		w.Printf("%s, %d", r.first, redact.Safe(r.inputsIndex))
		for _, t := range r.types {
			w.Printf(", %s", t)
		}
	case ProjectedKind, ValuesKind:
		for i, t := range r.types {
			if i > 0 {
				w.SafeString(", ")
			}
			w.Print(t)
		}
	case BufferKind:
		w.Print(r.first)
	}
	w.SafeRune(')')
}

func (r *RowType) String() string {
	return redact.StringWithoutMarkers(r)
}

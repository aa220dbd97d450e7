// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

import (
	"strings"

	"github.com/cockroachdb/redact"
)

// IndexID uniquely identifies an index within a Schema.
type IndexID int32

// IndexJoinType is the join semantics a group index was declared with.
type IndexJoinType int8

const (
	// IndexJoinLeft means the index holds a row for every row of its
	// root-most table, with descendant columns NULL when no descendant row
	// exists. It never holds orphans.
	IndexJoinLeft IndexJoinType = iota
	// IndexJoinInner means the index holds a row only for leaf-most rows,
	// whether or not their ancestors exist.
	IndexJoinInner
)

func (j IndexJoinType) String() string {
	if j == IndexJoinLeft {
		return "LEFT"
	}
	return "INNER"
}

// SafeValue implements the redact.SafeValue interface.
func (IndexJoinType) SafeValue() {}

// IndexColumn is one key position of an index.
type IndexColumn struct {
	Column    *Column
	Position  int
	Ascending bool
	// Recoverable is false when the column's value cannot be decoded from
	// the index entry, as for the coordinates folded into a spatial z-value.
	Recoverable bool
}

// Index is either a table index, whose columns all belong to one table, or a
// group index, whose columns may come from several tables along one branch
// of a group.
type Index struct {
	ID     IndexID
	Name   string
	Unique bool
	// KeyColumns are the declared key columns, in key order.
	KeyColumns []*IndexColumn
	// JoinType only applies to group indexes.
	JoinType IndexJoinType
	// SpatialColumns is the number of leading key columns that are combined
	// into a spatial z-value.
	SpatialColumns int

	table      *Table
	group      *Group
	rootMost   *Table
	allColumns []*IndexColumn
}

// IsGroupIndex returns true for an index defined over a group rather than a
// single table.
func (ix *Index) IsGroupIndex() bool {
	return ix.group != nil
}

// IsSpatial returns true if the index has a z-value prefix.
func (ix *Index) IsSpatial() bool {
	return ix.SpatialColumns > 0
}

// Table returns the indexed table, or the leaf-most table for a group index.
func (ix *Index) Table() *Table {
	return ix.table
}

// Group returns the group of a group index, or nil for a table index.
func (ix *Index) Group() *Group {
	return ix.group
}

// LeafMostTable returns the deepest table contributing columns.
func (ix *Index) LeafMostTable() *Table {
	return ix.table
}

// RootMostTable returns the shallowest table contributing columns.
func (ix *Index) RootMostTable() *Table {
	return ix.rootMost
}

// AllColumns returns the declared key columns followed by the hkey columns
// of the leaf-most table that are not already part of the key. Every index
// entry carries these, so the trailing columns are always recoverable.
func (ix *Index) AllColumns() []*IndexColumn {
	return ix.allColumns
}

func (ix *Index) String() string {
	var b strings.Builder
	if ix.IsGroupIndex() {
		b.WriteString(ix.group.Name)
	} else {
		b.WriteString(ix.table.Name)
	}
	b.WriteString(".")
	b.WriteString(ix.Name)
	b.WriteString("(")
	for i, ic := range ix.KeyColumns {
		if i > 0 {
			b.WriteString(", ")
		}
		if ix.IsGroupIndex() {
			b.WriteString(ic.Column.String())
		} else {
			b.WriteString(ic.Column.Name)
		}
		if !ic.Ascending {
			b.WriteString(" DESC")
		}
	}
	b.WriteString(")")
	return b.String()
}

// SafeFormat implements the redact.SafeFormatter interface.
func (ix *Index) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(ix.String())
}

func (ix *Index) finish() {
	all := make([]*IndexColumn, len(ix.KeyColumns), len(ix.KeyColumns)+ix.table.hkey.NColumns())
	copy(all, ix.KeyColumns)
	for _, c := range ix.hkeyColumns() {
		present := false
		for _, ic := range ix.KeyColumns {
			if ic.Column == c {
				present = true
				break
			}
		}
		if !present {
			all = append(all, &IndexColumn{
				Column:      c,
				Position:    len(all),
				Ascending:   true,
				Recoverable: true,
			})
		}
	}
	ix.allColumns = all
}

// hkeyColumns returns the columns of the leaf-most table's hkey as stored in
// this index. A table index stores the parent's key through the table's own
// parent join columns.
func (ix *Index) hkeyColumns() []*Column {
	cols := ix.table.hkey.Columns()
	if ix.IsGroupIndex() || ix.table.parent == nil {
		return cols
	}
	parent := ix.table.parent
	for i, c := range cols {
		if c.table != parent {
			continue
		}
		for j, pk := range parent.PrimaryKey {
			if pk == c {
				cols[i] = ix.table.ParentJoinColumns[j]
			}
		}
	}
	return cols
}

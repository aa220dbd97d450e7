// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

import (
	"github.com/cockroachdb/redact"
	"github.com/hkeyplan/hkeyplan/pkg/sql/types"
)

// TableID uniquely identifies a table within a Schema. IDs are assigned in
// creation order starting at 1; the planner uses them as a stable total
// order over tables.
type TableID int32

// SafeValue implements the redact.SafeValue interface.
func (TableID) SafeValue() {}

// Column is a column of a table.
type Column struct {
	Name     string
	Ordinal  int
	Type     *types.T
	Nullable bool

	table *Table
}

// Table returns the table that owns the column.
func (c *Column) Table() *Table {
	return c.table
}

func (c *Column) String() string {
	return c.table.Name + "." + c.Name
}

// Table is a base table. A table belongs to exactly one group; its parent (if
// any) is the table whose rows its rows are stored under.
type Table struct {
	ID      TableID
	Name    string
	Columns []*Column

	// PrimaryKey lists the primary key columns in key order.
	PrimaryKey []*Column
	// ParentJoinColumns are the columns of this table that reference the
	// primary key of Parent, in the parent's key order.
	ParentJoinColumns []*Column
	// Indexes holds the table indexes, the primary index first.
	Indexes []*Index

	parent   *Table
	children []*Table
	group    *Group
	depth    int
	hkey     *HKey
}

// Parent returns the parent table, or nil for a group root.
func (t *Table) Parent() *Table {
	return t.parent
}

// Children returns the child tables in creation order.
func (t *Table) Children() []*Table {
	return t.children
}

// Group returns the group the table is clustered in.
func (t *Table) Group() *Group {
	return t.group
}

// Depth is zero for a group root and one more than the parent's depth
// otherwise.
func (t *Table) Depth() int {
	return t.depth
}

// IsRoot returns true if the table is the root of its group.
func (t *Table) IsRoot() bool {
	return t.parent == nil
}

// IsDescendantOf returns true if ancestor is a strict ancestor of t.
func (t *Table) IsDescendantOf(ancestor *Table) bool {
	if ancestor == nil || ancestor.depth >= t.depth {
		return false
	}
	for p := t.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryIndex returns the index on the primary key.
func (t *Table) PrimaryIndex() *Index {
	return t.Indexes[0]
}

// HKey returns the hierarchical key of the table.
func (t *Table) HKey() *HKey {
	return t.hkey
}

func (t *Table) String() string {
	return t.Name
}

// SafeFormat implements the redact.SafeFormatter interface.
func (t *Table) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(t.Name)
}

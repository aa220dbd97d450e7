// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

// Group is a set of tables physically clustered under the hierarchical key
// of its root table.
type Group struct {
	Name string
	Root *Table
	// Indexes holds the group indexes.
	Indexes []*Index

	tables []*Table
}

// Tables returns the tables of the group in creation order.
func (g *Group) Tables() []*Table {
	return g.tables
}

func (g *Group) String() string {
	return g.Name
}

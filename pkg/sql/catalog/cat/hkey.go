// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

import "strings"

// HKeySegment is the part of a hierarchical key contributed by one table
// along the path from the group root.
type HKeySegment struct {
	Table   *Table
	Columns []*Column
}

// HKey is the hierarchical key of a table: one segment per table from the
// group root down to the table itself, each holding that table's primary
// key. Rows of a group are stored in hkey order, which is what puts child
// rows next to their parent.
type HKey struct {
	Table    *Table
	Segments []HKeySegment
}

func makeHKey(t *Table) *HKey {
	var path []*Table
	for p := t; p != nil; p = p.parent {
		path = append(path, p)
	}
	h := &HKey{Table: t, Segments: make([]HKeySegment, len(path))}
	for i := range path {
		anc := path[len(path)-1-i]
		h.Segments[i] = HKeySegment{Table: anc, Columns: anc.PrimaryKey}
	}
	return h
}

// NColumns is the total number of columns across all segments.
func (h *HKey) NColumns() int {
	n := 0
	for i := range h.Segments {
		n += len(h.Segments[i].Columns)
	}
	return n
}

// Columns flattens the segments into a single column list.
func (h *HKey) Columns() []*Column {
	cols := make([]*Column, 0, h.NColumns())
	for i := range h.Segments {
		cols = append(cols, h.Segments[i].Columns...)
	}
	return cols
}

func (h *HKey) String() string {
	var b strings.Builder
	b.WriteString("HKey(")
	for i := range h.Segments {
		if i > 0 {
			b.WriteString(", ")
		}
		seg := &h.Segments[i]
		b.WriteString(seg.Table.Name)
		b.WriteString("(")
		for j, c := range seg.Columns {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString(c.Name)
		}
		b.WriteString(")")
	}
	b.WriteString(")")
	return b.String()
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowtype

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"golang.org/x/tools/container/intsets"
)

// TypeComposition records the base tables contributing to a row type. It is
// immutable once built.
type TypeComposition struct {
	set    intsets.Sparse
	tables []*cat.Table
	// leafmost is the deepest table when every table lies on one branch of
	// the group, and nil otherwise.
	leafmost *cat.Table
	rootmost *cat.Table
}

func makeComposition(tables ...*cat.Table) *TypeComposition {
	c := &TypeComposition{}
	for _, t := range tables {
		c.add(t)
	}
	c.finish()
	return c
}

func (c *TypeComposition) add(t *cat.Table) {
	if c.set.Insert(int(t.ID)) {
		c.tables = append(c.tables, t)
	}
}

func (c *TypeComposition) finish() {
	var deepest *cat.Table
	for _, t := range c.tables {
		if c.rootmost == nil || t.Depth() < c.rootmost.Depth() {
			c.rootmost = t
		}
		if deepest == nil || t.Depth() > deepest.Depth() {
			deepest = t
		}
	}
	for _, t := range c.tables {
		if t != deepest && !deepest.IsDescendantOf(t) {
			return
		}
	}
	c.leafmost = deepest
}

// union returns a composition holding the tables of both c and o.
func (c *TypeComposition) union(o *TypeComposition) *TypeComposition {
	u := &TypeComposition{}
	for _, t := range c.tables {
		u.add(t)
	}
	for _, t := range o.tables {
		u.add(t)
	}
	u.finish()
	return u
}

// Tables returns the contributing tables in the order they were added.
func (c *TypeComposition) Tables() []*cat.Table {
	return c.tables
}

// Contains returns true if t contributes to the composition.
func (c *TypeComposition) Contains(t *cat.Table) bool {
	return c.set.Has(int(t.ID))
}

// Len returns the number of tables.
func (c *TypeComposition) Len() int {
	return c.set.Len()
}

// SingleBranch returns true if all tables lie on one root-to-leaf path.
func (c *TypeComposition) SingleBranch() bool {
	return c.leafmost != nil
}

// LeafmostTable returns the deepest table of a single-branch composition,
// or nil when the tables span more than one branch.
func (c *TypeComposition) LeafmostTable() *cat.Table {
	return c.leafmost
}

// RootmostTable returns the shallowest table.
func (c *TypeComposition) RootmostTable() *cat.Table {
	return c.rootmost
}

// IsAncestorOf returns true if both compositions are single-branch and the
// leafmost table of o strictly descends from the leafmost table of c.
func (c *TypeComposition) IsAncestorOf(o *TypeComposition) bool {
	if c.leafmost == nil || o.leafmost == nil {
		return false
	}
	return o.leafmost.IsDescendantOf(c.leafmost)
}

// IsParentOf returns true if both compositions are single-branch and the
// leafmost table of o is a child of the leafmost table of c.
func (c *TypeComposition) IsParentOf(o *TypeComposition) bool {
	if c.leafmost == nil || o.leafmost == nil {
		return false
	}
	return o.leafmost.Parent() == c.leafmost
}

// CommonAncestor returns the deepest table present in both compositions.
// The compositions must share a table.
func (c *TypeComposition) CommonAncestor(o *TypeComposition) *cat.Table {
	var common intsets.Sparse
	common.Intersection(&c.set, &o.set)
	if common.IsEmpty() {
		panic(errors.AssertionFailedf("no common ancestor between %s and %s", c, o))
	}
	var deepest *cat.Table
	for _, t := range c.tables {
		if common.Has(int(t.ID)) && (deepest == nil || t.Depth() > deepest.Depth()) {
			deepest = t
		}
	}
	return deepest
}

// SafeFormat implements the redact.SafeFormatter interface.
func (c *TypeComposition) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeRune('{')
	for i, t := range c.tables {
		if i > 0 {
			w.SafeString(", ")
		}
		w.Print(t)
	}
	w.SafeRune('}')
}

func (c *TypeComposition) String() string {
	return redact.StringWithoutMarkers(c)
}

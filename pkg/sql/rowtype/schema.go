// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowtype

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/types"
)

// Schema owns the row types of one catalog snapshot. The table, hkey and
// index row types are built once by NewSchema and never change, so lookups
// need no locking. Derived row types get a fresh id on every call; the id
// counter is the only mutable state and is advanced atomically, so a Schema
// may be shared by concurrent compilations.
type Schema struct {
	catalog *cat.Schema
	metrics *Metrics
	nextID  atomic.Int32

	// The slices are indexed by catalog id.
	tableTypes []*RowType
	hkeyTypes  []*RowType
	indexTypes []*RowType
}

// NewSchema builds the canonical row types of every table, hkey and index in
// catalog. Ids are assigned to tables, then hkeys, then indexes, each in
// catalog order. A nil metrics allocates private counters.
func NewSchema(catalog *cat.Schema, metrics *Metrics) *Schema {
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Schema{catalog: catalog, metrics: metrics}
	tables := catalog.Tables()
	indexes := catalog.Indexes()
	s.tableTypes = make([]*RowType, len(tables)+1)
	s.hkeyTypes = make([]*RowType, len(tables)+1)
	s.indexTypes = make([]*RowType, len(indexes)+1)
	for _, t := range tables {
		s.tableTypes[t.ID] = s.alloc(&RowType{
			kind:  TableKind,
			table: t,
			hkey:  t.HKey(),
			comp:  makeComposition(t),
		})
	}
	for _, t := range tables {
		s.hkeyTypes[t.ID] = s.alloc(&RowType{
			kind:  HKeyKind,
			table: t,
			hkey:  t.HKey(),
			comp:  makeComposition(t),
		})
	}
	for _, ix := range indexes {
		var span []*cat.Table
		for t := ix.LeafMostTable(); t != nil; t = t.Parent() {
			span = append(span, t)
			if t == ix.RootMostTable() {
				break
			}
		}
		s.indexTypes[ix.ID] = s.alloc(&RowType{
			kind:  IndexKind,
			index: ix,
			hkey:  ix.LeafMostTable().HKey(),
			comp:  makeComposition(span...),
		})
	}
	return s
}

func (s *Schema) alloc(r *RowType) *RowType {
	r.id = TypeID(s.nextID.Add(1))
	s.metrics.Allocated.Inc(1)
	return r
}

// Catalog returns the catalog the row types were built from.
func (s *Schema) Catalog() *cat.Schema {
	return s.catalog
}

// Metrics returns the schema's counters.
func (s *Schema) Metrics() *Metrics {
	return s.metrics
}

// TableRowType returns the row type of table t, which must belong to the
// catalog.
func (s *Schema) TableRowType(t *cat.Table) *RowType {
	if t == nil || int(t.ID) >= len(s.tableTypes) || t.ID <= 0 || s.tableTypes[t.ID].table != t {
		panic(errors.AssertionFailedf("unknown table %v", t))
	}
	return s.tableTypes[t.ID]
}

// HKeyRowType returns the row type of the hkey of table t, which must belong
// to the catalog.
func (s *Schema) HKeyRowType(t *cat.Table) *RowType {
	if t == nil || int(t.ID) >= len(s.hkeyTypes) || t.ID <= 0 || s.hkeyTypes[t.ID].table != t {
		panic(errors.AssertionFailedf("unknown table %v", t))
	}
	return s.hkeyTypes[t.ID]
}

// IndexRowType returns the row type of index ix, which must belong to the
// catalog.
func (s *Schema) IndexRowType(ix *cat.Index) *RowType {
	if ix == nil || int(ix.ID) >= len(s.indexTypes) || ix.ID <= 0 || s.indexTypes[ix.ID].index != ix {
		panic(errors.AssertionFailedf("unknown index %v", ix))
	}
	return s.indexTypes[ix.ID]
}

// NewFlattenType returns a row type joining rows of parent with rows of
// child. Both must be built from tables on one branch of a group, parent's
// leafmost table being an ancestor of child's.
func (s *Schema) NewFlattenType(parent, child *RowType, joinType JoinType) *RowType {
	if parent.comp == nil || child.comp == nil {
		panic(errors.AssertionFailedf("flatten of %s and %s without table composition", parent, child))
	}
	if !parent.comp.IsAncestorOf(child.comp) {
		panic(errors.AssertionFailedf("%s is not an ancestor of %s", parent, child))
	}
	return s.alloc(&RowType{
		kind:     FlattenedKind,
		first:    parent,
		second:   child,
		joinType: joinType,
		hkey:     child.hkey,
		comp:     parent.comp.union(child.comp),
	})
}

// NewProductType returns a row type combining left and right, which share
// the ancestor row type branch. Fields of right that belong to branch are
// not repeated. A nil branch selects the table row type of the deepest table
// common to both sides. A branch with a table composition must include that
// table.
func (s *Schema) NewProductType(left, branch, right *RowType) *RowType {
	if left.comp == nil || right.comp == nil {
		panic(errors.AssertionFailedf("product of %s and %s without table composition", left, right))
	}
	common := left.comp.CommonAncestor(right.comp)
	if branch == nil {
		branch = s.TableRowType(common)
	} else if branch.comp != nil && !branch.comp.Contains(common) {
		panic(errors.AssertionFailedf("branch %s does not contain %s", branch, common.Name))
	}
	if branch.NFields() > right.NFields() {
		panic(errors.AssertionFailedf("branch %s is wider than %s", branch, right))
	}
	return s.alloc(&RowType{
		kind:   ProductKind,
		first:  left,
		second: right,
		branch: branch,
		comp:   left.comp.union(right.comp),
	})
}

// NewAggregateType returns a row type keeping the first inputsIndex fields of
// base, followed by one field per aggregate result type.
func (s *Schema) NewAggregateType(base *RowType, inputsIndex int, aggTypes []*types.T) *RowType {
	if inputsIndex < 0 || inputsIndex > base.NFields() {
		panic(errors.AssertionFailedf("cannot keep %d fields of %s", inputsIndex, base))
	}
	return s.alloc(&RowType{
		kind:        AggregatedKind,
		first:       base,
		inputsIndex: inputsIndex,
		types:       append([]*types.T(nil), aggTypes...),
	})
}

// NewProjectType returns a row type with the given field types.
func (s *Schema) NewProjectType(fieldTypes []*types.T) *RowType {
	return s.alloc(&RowType{
		kind:  ProjectedKind,
		types: append([]*types.T(nil), fieldTypes...),
	})
}

// NewValuesType returns a row type for literal rows with the given field
// types.
func (s *Schema) NewValuesType(fieldTypes ...*types.T) *RowType {
	return s.alloc(&RowType{
		kind:  ValuesKind,
		types: append([]*types.T(nil), fieldTypes...),
	})
}

// NewBufferType returns a row type holding a row id followed by the fields
// of base.
func (s *Schema) NewBufferType(base *RowType) *RowType {
	return s.alloc(&RowType{
		kind:  BufferKind,
		first: base,
		hkey:  base.hkey,
		comp:  base.comp,
	})
}

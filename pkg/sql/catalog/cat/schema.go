// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cat is the schema object model the planner works against: tables
// arranged into parent/child groups, their hierarchical keys, table indexes
// and group indexes. A Schema is built once and is read-only afterwards, so
// it may be shared by concurrent query compilations.
package cat

import (
	"github.com/cockroachdb/errors"
	"github.com/hkeyplan/hkeyplan/pkg/sql/types"
)

// PrimaryIndexName is the name given to every table's primary index.
const PrimaryIndexName = "PRIMARY"

// ColumnDef describes a column to create.
type ColumnDef struct {
	Name     string
	Type     *types.T
	Nullable bool
}

// TableDef describes a table to create. When Parent is set, the table joins
// the parent's group and ParentJoin names the columns of the new table that
// reference the parent's primary key.
type TableDef struct {
	Name       string
	Columns    []ColumnDef
	PrimaryKey []string
	Parent     string
	ParentJoin []string
}

// IndexColumnDef names one key column of an index to create.
type IndexColumnDef struct {
	// Table may be left empty for table indexes.
	Table      string
	Column     string
	Descending bool
}

// IndexDef describes an index to create. Exactly one of Table and Group is
// set; Group makes a group index.
type IndexDef struct {
	Name           string
	Table          string
	Group          string
	Columns        []IndexColumnDef
	Unique         bool
	JoinType       IndexJoinType
	SpatialColumns int
}

// Schema holds every table, group and index. The zero value is not usable;
// call NewSchema.
type Schema struct {
	tables  []*Table
	byName  map[string]*Table
	groups  []*Group
	indexes []*Index
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{byName: make(map[string]*Table)}
}

// Tables returns all tables in creation order.
func (s *Schema) Tables() []*Table {
	return s.tables
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *Table {
	return s.byName[name]
}

// TableByID returns the table with the given id, or nil.
func (s *Schema) TableByID(id TableID) *Table {
	if id <= 0 || int(id) > len(s.tables) {
		return nil
	}
	return s.tables[id-1]
}

// Groups returns all groups in creation order.
func (s *Schema) Groups() []*Group {
	return s.groups
}

// Group returns the group with the given name, or nil.
func (s *Schema) Group(name string) *Group {
	for _, g := range s.groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Indexes returns every table and group index in creation order.
func (s *Schema) Indexes() []*Index {
	return s.indexes
}

// IndexByID returns the index with the given id, or nil.
func (s *Schema) IndexByID(id IndexID) *Index {
	if id <= 0 || int(id) > len(s.indexes) {
		return nil
	}
	return s.indexes[id-1]
}

// CreateTable adds a table and its primary index to the schema.
func (s *Schema) CreateTable(def TableDef) (*Table, error) {
	if def.Name == "" {
		return nil, errors.New("table name must not be empty")
	}
	if _, ok := s.byName[def.Name]; ok {
		return nil, errors.Newf("table %q already exists", def.Name)
	}
	if len(def.PrimaryKey) == 0 {
		return nil, errors.WithHint(
			errors.Newf("table %q has no primary key", def.Name),
			"every table in a group needs a primary key to form its hkey",
		)
	}
	t := &Table{ID: TableID(len(s.tables) + 1), Name: def.Name}
	for i, cd := range def.Columns {
		if t.Column(cd.Name) != nil {
			return nil, errors.Newf("column %q specified more than once in table %q", cd.Name, def.Name)
		}
		typ := cd.Type
		if typ == nil {
			typ = types.Unknown
		}
		t.Columns = append(t.Columns, &Column{
			Name: cd.Name, Ordinal: i, Type: typ, Nullable: cd.Nullable, table: t,
		})
	}
	var err error
	if t.PrimaryKey, err = t.resolveColumns(def.PrimaryKey); err != nil {
		return nil, err
	}
	if def.Parent != "" {
		parent := s.byName[def.Parent]
		if parent == nil {
			return nil, errors.Newf("parent table %q of %q does not exist", def.Parent, def.Name)
		}
		if len(def.ParentJoin) != len(parent.PrimaryKey) {
			return nil, errors.WithHintf(
				errors.Newf("table %q joins to %q on %d columns", def.Name, def.Parent, len(def.ParentJoin)),
				"the parent's primary key has %d columns", len(parent.PrimaryKey),
			)
		}
		if t.ParentJoinColumns, err = t.resolveColumns(def.ParentJoin); err != nil {
			return nil, err
		}
		t.parent = parent
		t.depth = parent.depth + 1
		t.group = parent.group
		parent.children = append(parent.children, t)
	} else {
		t.group = &Group{Name: def.Name, Root: t}
		s.groups = append(s.groups, t.group)
	}
	t.group.tables = append(t.group.tables, t)
	t.hkey = makeHKey(t)

	primary := &Index{
		ID:     IndexID(len(s.indexes) + 1),
		Name:   PrimaryIndexName,
		Unique: true,
		table:  t,
	}
	primary.rootMost = t
	for i, c := range t.PrimaryKey {
		primary.KeyColumns = append(primary.KeyColumns, &IndexColumn{
			Column: c, Position: i, Ascending: true, Recoverable: true,
		})
	}
	primary.finish()
	t.Indexes = append(t.Indexes, primary)
	s.indexes = append(s.indexes, primary)

	s.tables = append(s.tables, t)
	s.byName[t.Name] = t
	return t, nil
}

// CreateIndex adds a table index or a group index.
func (s *Schema) CreateIndex(def IndexDef) (*Index, error) {
	if (def.Table == "") == (def.Group == "") {
		return nil, errors.Newf("index %q must name exactly one of a table or a group", def.Name)
	}
	if len(def.Columns) == 0 {
		return nil, errors.Newf("index %q has no columns", def.Name)
	}
	if def.SpatialColumns < 0 || def.SpatialColumns > len(def.Columns) || def.SpatialColumns == 1 {
		return nil, errors.WithHint(
			errors.Newf("index %q has an invalid spatial prefix of %d columns", def.Name, def.SpatialColumns),
			"a z-value combines at least two coordinate columns",
		)
	}
	ix := &Index{
		ID:             IndexID(len(s.indexes) + 1),
		Name:           def.Name,
		Unique:         def.Unique,
		JoinType:       def.JoinType,
		SpatialColumns: def.SpatialColumns,
	}
	if def.Table != "" {
		t := s.byName[def.Table]
		if t == nil {
			return nil, errors.Newf("table %q does not exist", def.Table)
		}
		for _, existing := range t.Indexes {
			if existing.Name == def.Name {
				return nil, errors.Newf("index %q already exists on table %q", def.Name, def.Table)
			}
		}
		for i, cd := range def.Columns {
			if cd.Table != "" && cd.Table != t.Name {
				return nil, errors.Newf("table index %q cannot reference column %s.%s", def.Name, cd.Table, cd.Column)
			}
			c := t.Column(cd.Column)
			if c == nil {
				return nil, errors.Newf("column %q does not exist in table %q", cd.Column, t.Name)
			}
			ix.KeyColumns = append(ix.KeyColumns, s.makeIndexColumn(c, i, cd.Descending, def.SpatialColumns))
		}
		ix.table = t
		ix.rootMost = t
		ix.finish()
		t.Indexes = append(t.Indexes, ix)
		s.indexes = append(s.indexes, ix)
		return ix, nil
	}

	g := s.Group(def.Group)
	if g == nil {
		return nil, errors.Newf("group %q does not exist", def.Group)
	}
	for _, existing := range g.Indexes {
		if existing.Name == def.Name {
			return nil, errors.Newf("index %q already exists on group %q", def.Name, def.Group)
		}
	}
	var leaf, root *Table
	for i, cd := range def.Columns {
		t := s.byName[cd.Table]
		if t == nil || t.group != g {
			return nil, errors.Newf("table %q is not part of group %q", cd.Table, g.Name)
		}
		c := t.Column(cd.Column)
		if c == nil {
			return nil, errors.Newf("column %q does not exist in table %q", cd.Column, t.Name)
		}
		ix.KeyColumns = append(ix.KeyColumns, s.makeIndexColumn(c, i, cd.Descending, def.SpatialColumns))
		if leaf == nil || t.depth > leaf.depth {
			leaf = t
		}
		if root == nil || t.depth < root.depth {
			root = t
		}
	}
	for _, ic := range ix.KeyColumns {
		t := ic.Column.table
		if t != leaf && !leaf.IsDescendantOf(t) {
			return nil, errors.WithHint(
				errors.Newf("group index %q spans more than one branch of group %q", def.Name, g.Name),
				"all tables of a group index must lie on the path from its root-most to its leaf-most table",
			)
		}
	}
	ix.group = g
	ix.table = leaf
	ix.rootMost = root
	ix.finish()
	g.Indexes = append(g.Indexes, ix)
	s.indexes = append(s.indexes, ix)
	return ix, nil
}

func (s *Schema) makeIndexColumn(c *Column, pos int, desc bool, spatial int) *IndexColumn {
	return &IndexColumn{
		Column:      c,
		Position:    pos,
		Ascending:   !desc,
		Recoverable: pos >= spatial,
	}
}

func (t *Table) resolveColumns(names []string) ([]*Column, error) {
	cols := make([]*Column, len(names))
	for i, name := range names {
		c := t.Column(name)
		if c == nil {
			return nil, errors.Newf("column %q does not exist in table %q", name, t.Name)
		}
		cols[i] = c
	}
	return cols, nil
}

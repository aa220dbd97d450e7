// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat_test

import (
	"testing"

	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/types"
	"github.com/hkeyplan/hkeyplan/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

func makeCOI(t *testing.T) *cat.Schema {
	s := cat.NewSchema()
	_, err := s.CreateTable(cat.TableDef{
		Name:       "customers",
		Columns:    []cat.ColumnDef{{Name: "cid", Type: types.Int}, {Name: "name", Type: types.String}},
		PrimaryKey: []string{"cid"},
	})
	require.NoError(t, err)
	_, err = s.CreateTable(cat.TableDef{
		Name: "orders",
		Columns: []cat.ColumnDef{
			{Name: "oid", Type: types.Int}, {Name: "cid", Type: types.Int}, {Name: "odate", Type: types.Date},
		},
		PrimaryKey: []string{"oid"},
		Parent:     "customers",
		ParentJoin: []string{"cid"},
	})
	require.NoError(t, err)
	_, err = s.CreateTable(cat.TableDef{
		Name: "items",
		Columns: []cat.ColumnDef{
			{Name: "iid", Type: types.Int}, {Name: "oid", Type: types.Int}, {Name: "sku", Type: types.String},
		},
		PrimaryKey: []string{"iid"},
		Parent:     "orders",
		ParentJoin: []string{"oid"},
	})
	require.NoError(t, err)
	_, err = s.CreateTable(cat.TableDef{
		Name: "addresses",
		Columns: []cat.ColumnDef{
			{Name: "aid", Type: types.Int}, {Name: "cid", Type: types.Int}, {Name: "state", Type: types.String},
		},
		PrimaryKey: []string{"aid"},
		Parent:     "customers",
		ParentJoin: []string{"cid"},
	})
	require.NoError(t, err)
	return s
}

func TestHierarchy(t *testing.T) {
	defer leaktest.AfterTest(t)()
	s := makeCOI(t)
	c, o, i, a := s.Table("customers"), s.Table("orders"), s.Table("items"), s.Table("addresses")

	require.Equal(t, 0, c.Depth())
	require.Equal(t, 2, i.Depth())
	require.True(t, i.IsDescendantOf(c))
	require.True(t, i.IsDescendantOf(o))
	require.False(t, i.IsDescendantOf(i))
	require.False(t, i.IsDescendantOf(a))
	require.False(t, c.IsDescendantOf(o))
	require.Same(t, c.Group(), i.Group())
	require.Len(t, s.Groups(), 1)
	require.Equal(t, "HKey(customers(cid), orders(oid), items(iid))", i.HKey().String())
	require.Equal(t, 3, i.HKey().NColumns())
	require.Equal(t, cat.TableID(3), i.ID)
	require.Same(t, i, s.TableByID(3))
	require.Nil(t, s.TableByID(9))
}

func TestIndexes(t *testing.T) {
	defer leaktest.AfterTest(t)()
	s := makeCOI(t)

	ix, err := s.CreateIndex(cat.IndexDef{
		Name:  "odate",
		Table: "orders",
		Columns: []cat.IndexColumnDef{
			{Column: "odate", Descending: true},
		},
	})
	require.NoError(t, err)
	require.False(t, ix.IsGroupIndex())
	require.Equal(t, "orders.odate(odate DESC)", ix.String())
	// The key is followed by the hkey columns. The parent's key is stored
	// through orders.cid.
	require.Len(t, ix.AllColumns(), 3)
	require.Equal(t, "orders.cid", ix.AllColumns()[1].Column.String())
	require.True(t, ix.AllColumns()[2].Recoverable)

	gi, err := s.CreateIndex(cat.IndexDef{
		Name:  "name_sku",
		Group: "customers",
		Columns: []cat.IndexColumnDef{
			{Table: "customers", Column: "name"},
			{Table: "items", Column: "sku"},
		},
		JoinType: cat.IndexJoinLeft,
	})
	require.NoError(t, err)
	require.True(t, gi.IsGroupIndex())
	require.Same(t, s.Table("items"), gi.LeafMostTable())
	require.Same(t, s.Table("customers"), gi.RootMostTable())
	require.Len(t, s.Group("customers").Indexes, 1)

	_, err = s.CreateIndex(cat.IndexDef{
		Name:  "bad",
		Group: "customers",
		Columns: []cat.IndexColumnDef{
			{Table: "addresses", Column: "state"},
			{Table: "items", Column: "sku"},
		},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "more than one branch")

	sp, err := s.CreateIndex(cat.IndexDef{
		Name:           "geo",
		Table:          "items",
		Columns:        []cat.IndexColumnDef{{Column: "iid"}, {Column: "oid"}, {Column: "sku"}},
		SpatialColumns: 2,
	})
	require.NoError(t, err)
	require.False(t, sp.KeyColumns[0].Recoverable)
	require.False(t, sp.KeyColumns[1].Recoverable)
	require.True(t, sp.KeyColumns[2].Recoverable)
}

func TestCreateErrors(t *testing.T) {
	defer leaktest.AfterTest(t)()
	s := makeCOI(t)
	testCases := []struct {
		def cat.TableDef
		err string
	}{
		{cat.TableDef{Name: "customers", PrimaryKey: []string{"x"}}, "already exists"},
		{cat.TableDef{Name: "t"}, "no primary key"},
		{cat.TableDef{Name: "t", PrimaryKey: []string{"x"}}, `column "x" does not exist`},
		{
			cat.TableDef{
				Name:       "t",
				Columns:    []cat.ColumnDef{{Name: "x", Type: types.Int}},
				PrimaryKey: []string{"x"},
				Parent:     "nope",
			},
			"does not exist",
		},
		{
			cat.TableDef{
				Name:       "t",
				Columns:    []cat.ColumnDef{{Name: "x", Type: types.Int}},
				PrimaryKey: []string{"x"},
				Parent:     "customers",
			},
			"joins to",
		},
	}
	for _, tc := range testCases {
		_, err := s.CreateTable(tc.def)
		require.Error(t, err, "%+v", tc.def)
		require.Contains(t, err.Error(), tc.err)
	}
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package planyaml_test

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/catyaml"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan/planyaml"
	"github.com/hkeyplan/hkeyplan/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

// TestShapes runs the testdata files. The schema command loads the schema
// in its input; build parses a query shape and prints its plan, followed by
// the bound tables and the conditions marked as group joins.
func TestShapes(t *testing.T) {
	defer leaktest.AfterTest(t)()
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		var schema *cat.Schema
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "schema":
				var err error
				if schema, err = catyaml.Load([]byte(d.Input)); err != nil {
					d.Fatalf(t, "%v", err)
				}
				return ""
			case "build":
				q, err := planyaml.Load(schema, []byte(d.Input))
				if err != nil {
					return fmt.Sprintf("error: %v\n", err)
				}
				var buf strings.Builder
				buf.WriteString(plan.Format(q.Root))
				var bound []string
				for ts := range q.Bound {
					bound = append(bound, ts.Table.Name)
				}
				sort.Strings(bound)
				if len(bound) > 0 {
					fmt.Fprintf(&buf, "bound: %s\n", strings.Join(bound, ", "))
				}
				for _, l := range q.ConditionSources() {
					for _, c := range l.Conditions {
						if c.Implementation() == plan.ImplementationGroupJoin {
							fmt.Fprintf(&buf, "group join: %s\n", c)
						}
					}
				}
				return buf.String()
			}
			d.Fatalf(t, "unknown command %s", d.Cmd)
			return ""
		})
	})
}

func loadSchema(t *testing.T) *cat.Schema {
	s, err := catyaml.LoadFile("../../catalog/catyaml/testdata/coi.yaml")
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	defer leaktest.AfterTest(t)()
	s := loadSchema(t)
	q, err := planyaml.Load(s, []byte(`
tables:
  - table: customers
    as: c
  - table: orders
    as: o
    required: false
join_on: [c.cid = o.cid, o.cid = c.cid]
where: [c.name = Smith, "o.odate >= 2024-01-01", o.oid <= 4.5]
project: [c.name, o.oid]
distinct: true
`))
	require.NoError(t, err)
	c, o := q.Table("c"), q.Table("o")
	require.Same(t, c, o.ParentTable())
	require.Equal(t, plan.MakeTableSourceSet(c), q.RequiredTables())
	require.Same(t, q.Project, q.ProjectDistinct())
	require.Same(t, q.Project, q.Distinct.Input)
	require.Nil(t, q.Sort)
	require.Nil(t, q.Aggregate)

	sources := q.ConditionSources()
	require.Len(t, sources, 2)
	require.Same(t, q.Select.Conditions, sources[0])
	for _, cond := range sources[1].Conditions {
		require.Equal(t, plan.ImplementationGroupJoin, cond.Implementation(), "%s", cond)
	}

	where := sources[0].Conditions
	// Strings that do not parse as numbers stay strings.
	require.Equal(t, "2024-01-01", where[1].(*plan.ComparisonCondition).Right.(*plan.ConstExpr).Value)
	require.Equal(t, "4.5", fmt.Sprint(where[2].(*plan.ComparisonCondition).Right))
}

func TestLoadErrors(t *testing.T) {
	defer leaktest.AfterTest(t)()
	s := loadSchema(t)
	testCases := []struct {
		yaml string
		err  string
	}{
		{"tables: [{table: orders}]\nwher: [orders.oid = 1]", "parsing query"},
		{"where: [orders.oid = 1]", "query has no tables"},
		{"tables: [{table: orders}]\nwhere: [orders.oid = $0]", "malformed parameter"},
		{"tables: [{table: orders}]\nwhere: [orders.oid =]", "malformed condition"},
		{"tables: [{table: orders}]\nwhere: [orders.oid IS NOT NULL]", "expected IS NULL"},
		{"tables: [{table: orders}]\nwhere: [orders.oid IN 1]", "must be parenthesized"},
		{"tables: [{table: orders}]\nwhere: [orders.oid = 1 2]", "unexpected"},
		{"tables: [{table: orders}]\norder_by: [orders.oid UP]", "unexpected"},
		{"tables: [{table: orders}]\nkind: merge", "unknown query kind"},
		{"tables: [{table: orders}]\nkind: delete\ntarget: customers", "is not a table of the query"},
	}
	for _, tc := range testCases {
		_, err := planyaml.Load(s, []byte(tc.yaml))
		require.Error(t, err, "%s", tc.yaml)
		require.Contains(t, err.Error(), tc.err, "%s", tc.yaml)
	}
}

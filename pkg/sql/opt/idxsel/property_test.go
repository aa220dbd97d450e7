// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/hkeyplan/hkeyplan/pkg/settings"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/catyaml"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan/planyaml"
	"github.com/hkeyplan/hkeyplan/pkg/util/leaktest"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

const propertySchema = `
tables:
  - name: p
    columns: [pid INT, v INT]
    primary_key: [pid]
  - name: t
    parent: p
    parent_join: [pid]
    columns: [id INT, pid INT, a INT, b INT, c INT]
    primary_key: [id]
indexes:
  - name: a
    table: t
    columns: [a]
  - name: ab
    table: t
    columns: [a, b]
  - name: abc
    table: t
    columns: [a, b, c]
  - name: v
    table: p
    columns: [v]
  - name: v_a
    group: p
    join: LEFT
    columns: [p.v, t.a]
`

func loadPropertySchema(t *testing.T) *cat.Schema {
	s, err := catyaml.Load([]byte(propertySchema))
	require.NoError(t, err)
	return s
}

// scanShape describes a hand-analyzed candidate.
type scanShape struct {
	index      int
	oe         int
	covering   bool
	conditions bool
	nequals    int
	low, high  bool
}

func genScanShape(nindexes int) gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, nindexes-1),
		gen.IntRange(int(OrderNone), int(OrderSorted)),
		gen.Bool(),
		gen.Bool(),
		gen.IntRange(0, 2),
		gen.Bool(),
		gen.Bool(),
	).Map(func(vals []interface{}) scanShape {
		return scanShape{
			index:      vals[0].(int),
			oe:         vals[1].(int),
			covering:   vals[2].(bool),
			conditions: vals[3].(bool),
			nequals:    vals[4].(int),
			low:        vals[5].(bool),
			high:       vals[6].(bool),
		}
	})
}

func (sh scanShape) build(indexes []*cat.Index) *SingleIndexScan {
	s := &SingleIndexScan{
		Index:              indexes[sh.index],
		OrderEffectiveness: OrderEffectiveness(sh.oe),
		Covering:           sh.covering,
	}
	for i := 0; i < sh.nequals; i++ {
		s.EqualityComparands = append(s.EqualityComparands, plan.NewConstExpr(int64(i)))
	}
	if sh.low {
		s.LowComparand = plan.NewConstExpr(int64(0))
	}
	if sh.high {
		s.HighComparand = plan.NewConstExpr(int64(100))
	}
	if sh.conditions || sh.nequals > 0 || sh.low || sh.high {
		s.Conditions = []plan.Condition{plan.NewIsNull(plan.NewConstExpr(nil))}
	}
	return s
}

func sign(c int) int {
	return cmpInt(c, 0)
}

func TestCompareProperties(t *testing.T) {
	defer leaktest.AfterTest(t)()
	indexes := loadPropertySchema(t).Indexes()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("compare is antisymmetric", prop.ForAll(
		func(a, b scanShape) bool {
			sa, sb := a.build(indexes), b.build(indexes)
			return sign(Compare(sa, sb)) == -sign(Compare(sb, sa))
		},
		genScanShape(len(indexes)), genScanShape(len(indexes)),
	))

	properties.Property("a candidate ties with itself", prop.ForAll(
		func(a scanShape) bool {
			return Compare(a.build(indexes), a.build(indexes)) == 0
		},
		genScanShape(len(indexes)),
	))

	// The covering step only applies between candidates that alike absorb
	// conditions or not, so transitivity is only expected among those.
	properties.Property("compare is transitive for alike candidates", prop.ForAll(
		func(a, b, c scanShape) bool {
			sa, sb, sc := a.build(indexes), b.build(indexes), c.build(indexes)
			if sa.HasConditions() != sb.HasConditions() || sb.HasConditions() != sc.HasConditions() {
				return true
			}
			if Compare(sa, sb) >= 0 && Compare(sb, sc) >= 0 {
				return Compare(sa, sc) >= 0
			}
			return true
		},
		genScanShape(len(indexes)), genScanShape(len(indexes)), genScanShape(len(indexes)),
	))

	properties.Property("better order effectiveness always wins", prop.ForAll(
		func(a, b scanShape) bool {
			if a.oe == b.oe {
				return true
			}
			return sign(Compare(a.build(indexes), b.build(indexes))) == sign(a.oe-b.oe)
		},
		genScanShape(len(indexes)), genScanShape(len(indexes)),
	))

	properties.TestingRun(t)
}

// propertyGoal builds a goal over a single-table query on t.
type propertyGoal struct {
	t      *testing.T
	schema *cat.Schema
}

func (pg propertyGoal) build(where, orderBy []string) (*Goal, *plan.TableSource) {
	var buf strings.Builder
	buf.WriteString("tables:\n  - table: t\n")
	if len(where) > 0 {
		fmt.Fprintf(&buf, "where: [%s]\n", strings.Join(where, ", "))
	}
	if len(orderBy) > 0 {
		fmt.Fprintf(&buf, "order_by: [%s]\n", strings.Join(orderBy, ", "))
	}
	buf.WriteString("project: [t.id]\n")
	q, err := planyaml.Load(pg.schema, []byte(buf.String()))
	require.NoError(pg.t, err, buf.String())
	env := Env{Settings: settings.NewValues(), Metrics: NewMetrics()}
	g, err := NewGoal(env, q.Root, scopeOf(q), q.Tables)
	require.NoError(pg.t, err)
	return g, q.Table("t")
}

func indexNamed(table *cat.Table, name string) *cat.Index {
	for _, ix := range table.Indexes {
		if ix.Name == name {
			return ix
		}
	}
	return nil
}

var keyColumns = []string{"a", "b", "c"}

func TestGoalProperties(t *testing.T) {
	defer leaktest.AfterTest(t)()
	pg := propertyGoal{t: t, schema: loadPropertySchema(t)}
	abc := indexNamed(pg.schema.Table("t"), "abc")
	ab := indexNamed(pg.schema.Table("t"), "ab")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("equalities bind the longest key prefix", prop.ForAll(
		func(eq []bool) bool {
			var where []string
			for i, ok := range eq {
				if ok {
					where = append(where, fmt.Sprintf("t.%s = %d", keyColumns[i], i+1))
				}
			}
			g, ts := pg.build(where, nil)
			s := NewTableIndexScan(abc, ts)
			if _, err := g.Usable(s); err != nil {
				return false
			}
			prefix := 0
			for prefix < len(eq) && eq[prefix] {
				prefix++
			}
			if len(s.EqualityComparands) != prefix {
				return false
			}
			for i, c := range s.EqualityComparands {
				if c.String() != strconv.Itoa(i+1) {
					return false
				}
			}
			return s.HasConditions() == (prefix > 0)
		},
		gen.SliceOfN(3, gen.Bool()),
	))

	properties.Property("an equality on the leading column keeps the order", prop.ForAll(
		func(perm []int, n int) bool {
			var orderBy []string
			seen := make(map[int]bool)
			for _, i := range perm {
				if !seen[i] && len(orderBy) < n {
					seen[i] = true
					orderBy = append(orderBy, "t."+keyColumns[i])
				}
			}
			if len(orderBy) == 0 {
				return true
			}
			g, ts := pg.build(nil, orderBy)
			without := NewTableIndexScan(ab, ts)
			if _, err := g.Usable(without); err != nil {
				return false
			}
			g, ts = pg.build([]string{"t.a = 1"}, orderBy)
			with := NewTableIndexScan(ab, ts)
			if _, err := g.Usable(with); err != nil {
				return false
			}
			return with.OrderEffectiveness >= without.OrderEffectiveness
		},
		gen.SliceOfN(3, gen.IntRange(0, 2)), gen.IntRange(1, 3),
	))

	properties.Property("analysis leaves the goal unchanged", prop.ForAll(
		func(eq []bool, lowBound int) bool {
			var where []string
			for i, ok := range eq {
				if ok {
					where = append(where, fmt.Sprintf("t.%s = %d", keyColumns[i], i+1))
				}
			}
			where = append(where, fmt.Sprintf("t.b > %d", lowBound))
			g, ts := pg.build(where, []string{"t.b"})
			first := NewTableIndexScan(abc, ts)
			second := NewTableIndexScan(abc, ts)
			ok1, err1 := g.Usable(first)
			ok2, err2 := g.Usable(second)
			return err1 == nil && err2 == nil && ok1 == ok2 &&
				first.String() == second.String() &&
				first.Covering == second.Covering
		},
		gen.SliceOfN(3, gen.Bool()), gen.IntRange(0, 50),
	))

	properties.Property("analyzing a scan again gives the same result", prop.ForAll(
		func(eq []bool, desc bool) bool {
			var where []string
			for i, ok := range eq {
				if ok {
					where = append(where, fmt.Sprintf("t.%s = %d", keyColumns[i], i+1))
				}
			}
			orderBy := "t.b"
			if desc {
				orderBy += " DESC"
			}
			g, ts := pg.build(where, []string{orderBy})
			s := NewTableIndexScan(abc, ts)
			ok1, err1 := g.Usable(s)
			first := s.String()
			ok2, err2 := g.Usable(s)
			return err1 == nil && err2 == nil && ok1 == ok2 && first == s.String()
		},
		gen.SliceOfN(3, gen.Bool()), gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestUsableRepeated(t *testing.T) {
	defer leaktest.AfterTest(t)()
	pg := propertyGoal{t: t, schema: loadPropertySchema(t)}
	g, ts := pg.build([]string{"t.a = 1"}, []string{"t.b DESC"})
	s := NewTableIndexScan(indexNamed(ts.Table, "abc"), ts)
	for i := 0; i < 2; i++ {
		ok, err := g.Usable(s)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, s.EqualityComparands, 1)
		require.Nil(t, s.ConditionRange)
		require.Len(t, s.Conditions, 1)
		require.Equal(t, OrderSorted, s.OrderEffectiveness)
	}
}

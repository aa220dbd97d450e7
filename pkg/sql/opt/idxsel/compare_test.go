// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import (
	"testing"

	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
	"github.com/hkeyplan/hkeyplan/pkg/util/leaktest"
	"github.com/hkeyplan/hkeyplan/pkg/util/metric"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

// rank holds the fields Compare looks at, for readable diffs.
type rank struct {
	Index              string
	OrderEffectiveness string
	Covering           bool
	HasConditions      bool
	Equalities         int
	Bounds             int
	KeyColumns         int
	LeafTable          string
}

func rankOf(s *SingleIndexScan) rank {
	return rank{
		Index:              s.Index.String(),
		OrderEffectiveness: s.OrderEffectiveness.String(),
		Covering:           s.Covering,
		HasConditions:      s.HasConditions(),
		Equalities:         len(s.EqualityComparands),
		Bounds:             nBounds(s),
		KeyColumns:         s.NKeyColumns(),
		LeafTable:          s.Index.LeafMostTable().Name,
	}
}

func TestCompare(t *testing.T) {
	defer leaktest.AfterTest(t)()
	s := loadPropertySchema(t)
	tbl := s.Table("t")
	a, ab, abc := indexNamed(tbl, "a"), indexNamed(tbl, "ab"), indexNamed(tbl, "abc")
	va := s.Group("p").Indexes[0]
	cond := []plan.Condition{plan.NewIsNull(plan.NewConstExpr(nil))}
	five := plan.NewConstExpr(int64(5))

	testCases := []struct {
		name     string
		a, b     SingleIndexScan
		expected int
	}{
		{
			name:     "order effectiveness first",
			a:        SingleIndexScan{Index: abc, OrderEffectiveness: OrderGrouped},
			b:        SingleIndexScan{Index: a, OrderEffectiveness: OrderPartialGrouped, Covering: true, Conditions: cond},
			expected: 1,
		},
		{
			name:     "covering with conditions on both sides",
			a:        SingleIndexScan{Index: abc, Covering: true, Conditions: cond},
			b:        SingleIndexScan{Index: a, Conditions: cond, EqualityComparands: []plan.Expression{five}},
			expected: 1,
		},
		{
			// A covering scan without conditions does not beat a
			// non-covering one with conditions, nor the other way round:
			// the decision falls through to the equalities.
			name:     "covering ignored when only one side has conditions",
			a:        SingleIndexScan{Index: abc, Covering: true},
			b:        SingleIndexScan{Index: a, Conditions: cond, EqualityComparands: []plan.Expression{five}},
			expected: -1,
		},
		{
			name:     "covering ignored falls through to bounds",
			a:        SingleIndexScan{Index: a, Conditions: cond, LowComparand: five},
			b:        SingleIndexScan{Index: abc, Covering: true},
			expected: 1,
		},
		{
			name: "more equalities",
			a: SingleIndexScan{
				Index: abc, Conditions: cond, EqualityComparands: []plan.Expression{five, five},
			},
			b:        SingleIndexScan{Index: ab, Conditions: cond, EqualityComparands: []plan.Expression{five}},
			expected: 1,
		},
		{
			name:     "any equality over none",
			a:        SingleIndexScan{Index: abc, Conditions: cond, LowComparand: five, HighComparand: five},
			b:        SingleIndexScan{Index: ab, Conditions: cond, EqualityComparands: []plan.Expression{five}},
			expected: -1,
		},
		{
			name:     "more bounds",
			a:        SingleIndexScan{Index: abc, Conditions: cond, LowComparand: five, HighComparand: five},
			b:        SingleIndexScan{Index: a, Conditions: cond, LowComparand: five},
			expected: 1,
		},
		{
			name:     "narrower index",
			a:        SingleIndexScan{Index: ab},
			b:        SingleIndexScan{Index: abc},
			expected: 1,
		},
		{
			// v_a has two key columns like ab, and its leaf-most table t
			// is the same, so nothing separates them.
			name:     "tie",
			a:        SingleIndexScan{Index: ab},
			b:        SingleIndexScan{Index: va},
			expected: 0,
		},
		{
			name:     "deeper leaf",
			a:        SingleIndexScan{Index: a},
			b:        SingleIndexScan{Index: indexNamed(s.Table("p"), "v")},
			expected: 1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := sign(Compare(&tc.a, &tc.b))
			require.Equal(t, tc.expected, res, "a: %s\nb: %s\n%s",
				&tc.a, &tc.b, pretty.Diff(rankOf(&tc.a), rankOf(&tc.b)))
			require.Equal(t, -tc.expected, sign(Compare(&tc.b, &tc.a)))
		})
	}
}

func TestNeedSort(t *testing.T) {
	defer leaktest.AfterTest(t)()
	testCases := []struct {
		ordering, grouping, distinct bool
		oe                           OrderEffectiveness
		expected                     bool
	}{
		{oe: OrderNone, expected: false},
		{ordering: true, oe: OrderSorted, expected: false},
		{ordering: true, oe: OrderGrouped, expected: true},
		{distinct: true, oe: OrderNone, expected: true},
		{distinct: true, oe: OrderSorted, expected: false},
		{grouping: true, oe: OrderGrouped, expected: false},
		{grouping: true, oe: OrderSorted, expected: false},
		{grouping: true, oe: OrderPartialGrouped, expected: true},
	}
	for _, tc := range testCases {
		g := &Goal{}
		if tc.ordering {
			g.scope.Ordering = &plan.Sort{}
		}
		if tc.grouping {
			g.scope.Grouping = &plan.AggregateSource{}
		}
		if tc.distinct {
			g.scope.ProjectDistinct = &plan.Project{}
		}
		s := &SingleIndexScan{OrderEffectiveness: tc.oe}
		require.Equal(t, tc.expected, g.NeedSort(s), "%+v", tc)
	}
}

func TestMetricsRegister(t *testing.T) {
	defer leaktest.AfterTest(t)()
	m := NewMetrics()
	r := metric.NewRegistry()
	m.Register(r)
	require.Equal(t, []string{
		"sql.opt.index.candidates",
		"sql.opt.index.rejected_hierarchy",
		"sql.opt.index.selected",
		"sql.opt.index.usable",
	}, r.Names())
	m.Selected.Inc(1)
	require.Equal(t, int64(1), r.GetCounter("sql.opt.index.selected").Count())
}

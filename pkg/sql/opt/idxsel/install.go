// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import (
	"github.com/cockroachdb/errors"
	"github.com/hkeyplan/hkeyplan/pkg/sql/opt"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
)

// InstallUpstream commits to s: the conditions it absorbs are removed from
// their sources, the grouping and distinct are marked with how they will be
// implemented, and a sort the index makes unnecessary is spliced out of the
// plan.
func (g *Goal) InstallUpstream(s *SingleIndexScan) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	for _, c := range s.Conditions {
		for _, src := range g.scope.ConditionSources {
			if src.Remove(c) {
				break
			}
		}
	}
	if grouping := g.scope.Grouping; grouping != nil {
		switch s.OrderEffectiveness {
		case OrderSorted, OrderGrouped:
			grouping.Implementation = plan.AggregatePresorted
		case OrderPartialGrouped:
			grouping.Implementation = plan.AggregatePreaggregateResort
		default:
			grouping.Implementation = plan.AggregateSort
		}
	}
	if sort := g.scope.Ordering; sort != nil && s.OrderEffectiveness == OrderSorted {
		out := sort.Output()
		if out == nil {
			panic(errors.AssertionFailedf("ordering has no output to splice into"))
		}
		out.ReplaceInput(sort, sort.Input)
	}
	if project := g.scope.ProjectDistinct; project != nil {
		distinct, ok := project.Output().(*plan.Distinct)
		if !ok {
			panic(errors.AssertionFailedf("projection feeding a distinct has output %T", project.Output()))
		}
		if s.OrderEffectiveness == OrderSorted {
			distinct.Implementation = plan.DistinctPresorted
		} else {
			distinct.Implementation = plan.DistinctSort
		}
	}
	g.env.Metrics.Selected.Inc(1)
	return nil
}

// NeedSort returns true if the rows of s must still be sorted for the
// goal. An ordering or distinct needs SORTED rows; a grouping is also served
// by GROUPED ones.
func (g *Goal) NeedSort(s *SingleIndexScan) bool {
	switch {
	case g.scope.Ordering != nil, g.scope.ProjectDistinct != nil:
		return s.OrderEffectiveness != OrderSorted
	case g.scope.Grouping != nil:
		return s.OrderEffectiveness != OrderSorted && s.OrderEffectiveness != OrderGrouped
	}
	return false
}

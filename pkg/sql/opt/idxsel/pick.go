// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/opt"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
	"github.com/hkeyplan/hkeyplan/pkg/util/log"
)

// PickBestIndex returns the best usable index for reading table, or nil if
// no index serves the goal. Table indexes are only considered when table is
// in required; group indexes whose leaf-most table is table are considered
// when the query's join shape fits their join type.
func (g *Goal) PickBestIndex(
	ctx context.Context, table *plan.TableSource, required plan.TableSourceSet,
) (_ *SingleIndexScan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	return g.pickBestIndex(g.annotate(ctx), table, required), nil
}

// PickBestIndexForTables returns the best index over all of tables. A
// later table's best index replaces an earlier one only if it compares
// strictly better.
func (g *Goal) PickBestIndexForTables(
	ctx context.Context, tables []*plan.TableSource, required plan.TableSourceSet,
) (_ *SingleIndexScan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	ctx = g.annotate(ctx)
	var best *SingleIndexScan
	for _, table := range tables {
		s := g.pickBestIndex(ctx, table, required)
		if s != nil && (best == nil || Compare(s, best) > 0) {
			best = s
		}
	}
	return best, nil
}

func (g *Goal) annotate(ctx context.Context) context.Context {
	return logtags.AddTag(ctx, "goal", g.id)
}

func (g *Goal) pickBestIndex(
	ctx context.Context, table *plan.TableSource, required plan.TableSourceSet,
) *SingleIndexScan {
	ctx = logtags.AddTag(ctx, "table", table.Table.Name)
	var best *SingleIndexScan
	if required.Contains(table) {
		for _, ix := range table.Table.Indexes {
			best = g.betterIndex(ctx, best, NewTableIndexScan(ix, table))
		}
	}
	if table.Group == nil || !GroupIndexesEnabled.Get(g.env.Settings) {
		return best
	}
	for _, ix := range table.Group.Group.Indexes {
		if ix.LeafMostTable() != table.Table {
			continue
		}
		g.checkComposition(ix, table)
		var s *SingleIndexScan
		if ix.JoinType == cat.IndexJoinLeft {
			s = leftJoinCandidate(ix, table, required)
		} else {
			s = innerJoinCandidate(ix, table)
		}
		if s == nil {
			g.env.Metrics.RejectedHierarchy.Inc(1)
			log.VEventf(ctx, g.logLevel(), "Rejecting %s: join shape does not fit", ix)
			continue
		}
		best = g.betterIndex(ctx, best, s)
	}
	return best
}

func (g *Goal) checkComposition(ix *cat.Index, table *plan.TableSource) {
	if g.env.RowTypes == nil {
		return
	}
	comp := g.env.RowTypes.IndexRowType(ix).Composition()
	if comp.LeafmostTable() != table.Table {
		panic(errors.AssertionFailedf(
			"group index %s has composition %s, which does not lead to %s", ix, comp, table.Table.Name))
	}
}

// spanState is the state of a walk from a group index's leaf-most table
// up to its root-most table.
type spanState int8

const (
	// spanOutside: no table of the span has been seen yet.
	spanOutside spanState = iota
	// spanInside: the walk is in the run of tables that form the span.
	spanInside
	// spanClosed: the run ended before the root-most table.
	spanClosed
)

// leftJoinCandidate returns a candidate for a LEFT group index, or nil. From
// the leaf up, the index may start with tables the query does not require,
// followed by a run of required tables that reaches the index's root-most
// table.
func leftJoinCandidate(
	ix *cat.Index, leaf *plan.TableSource, required plan.TableSourceSet,
) *SingleIndexScan {
	var leafRequired, rootRequired *plan.TableSource
	state := spanOutside
	for ts := leaf; ts != nil; ts = ts.ParentTable() {
		switch req := required.Contains(ts); {
		case state == spanOutside && req:
			leafRequired, state = ts, spanInside
		case state == spanInside && !req:
			// A gap in the required span.
			state = spanClosed
		}
		if state == spanInside {
			rootRequired = ts
		}
		if ts.Table == ix.RootMostTable() {
			if state != spanInside {
				return nil
			}
			return NewGroupIndexScan(ix, ts, rootRequired, leafRequired, leaf)
		}
		if state == spanClosed {
			return nil
		}
	}
	return nil
}

// innerJoinCandidate returns a candidate for an INNER group index, or nil.
// From the leaf up, the index must start with tables that are inner joined,
// and may be followed by tables on the optional side of outer joins up to
// its root-most table.
func innerJoinCandidate(ix *cat.Index, leaf *plan.TableSource) *SingleIndexScan {
	var rootRequired *plan.TableSource
	state := spanOutside
	for ts := leaf; ts != nil; ts = ts.ParentTable() {
		switch {
		case ts.Required && state == spanClosed:
			return nil
		case ts.Required:
			rootRequired, state = ts, spanInside
		case state == spanOutside:
			// The leaf itself is optional.
			return nil
		default:
			state = spanClosed
		}
		if ts.Table == ix.RootMostTable() {
			return NewGroupIndexScan(ix, ts, rootRequired, leaf, leaf)
		}
	}
	return nil
}

// betterIndex analyzes candidate and returns whichever of best and
// candidate is preferred.
func (g *Goal) betterIndex(ctx context.Context, best, candidate *SingleIndexScan) *SingleIndexScan {
	g.env.Metrics.Candidates.Inc(1)
	if !g.usable(candidate) {
		return best
	}
	g.env.Metrics.Usable.Inc(1)
	level := g.logLevel()
	if best == nil {
		log.VEventf(ctx, level, "Selecting %s", candidate)
		return candidate
	}
	if Compare(candidate, best) > 0 {
		log.VEventf(ctx, level, "Preferring %s over %s", candidate, best)
		return candidate
	}
	log.VEventf(ctx, level, "Rejecting %s in favor of %s", candidate, best)
	return best
}

func (g *Goal) logLevel() int32 {
	return int32(CandidateLogVerbosity.Get(g.env.Settings))
}

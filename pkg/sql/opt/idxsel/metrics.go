// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import "github.com/hkeyplan/hkeyplan/pkg/util/metric"

var (
	metaCandidates = metric.Metadata{
		Name: "sql.opt.index.candidates",
		Help: "Number of index candidates considered",
	}
	metaUsable = metric.Metadata{
		Name: "sql.opt.index.usable",
		Help: "Number of index candidates that could serve a query",
	}
	metaRejectedHierarchy = metric.Metadata{
		Name: "sql.opt.index.rejected_hierarchy",
		Help: "Number of group indexes rejected because the query's join shape does not fit them",
	}
	metaSelected = metric.Metadata{
		Name: "sql.opt.index.selected",
		Help: "Number of indexes installed into a plan",
	}
)

// Metrics holds the index selection counters.
type Metrics struct {
	Candidates        *metric.Counter
	Usable            *metric.Counter
	RejectedHierarchy *metric.Counter
	Selected          *metric.Counter
}

// NewMetrics allocates unregistered counters.
func NewMetrics() *Metrics {
	return &Metrics{
		Candidates:        metric.NewCounter(metaCandidates),
		Usable:            metric.NewCounter(metaUsable),
		RejectedHierarchy: metric.NewCounter(metaRejectedHierarchy),
		Selected:          metric.NewCounter(metaSelected),
	}
}

// Register adds the counters to r.
func (m *Metrics) Register(r *metric.Registry) {
	r.MustAdd(metaCandidates.Name, m.Candidates)
	r.MustAdd(metaUsable.Name, m.Usable)
	r.MustAdd(metaRejectedHierarchy.Name, m.RejectedHierarchy)
	r.MustAdd(metaSelected.Name, m.Selected)
}

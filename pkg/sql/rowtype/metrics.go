// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowtype

import "github.com/hkeyplan/hkeyplan/pkg/util/metric"

var metaAllocated = metric.Metadata{
	Name: "sql.rowtype.allocated",
	Help: "Number of row types allocated",
}

// Metrics holds the row type counters.
type Metrics struct {
	Allocated *metric.Counter
}

// NewMetrics allocates unregistered counters.
func NewMetrics() *Metrics {
	return &Metrics{Allocated: metric.NewCounter(metaAllocated)}
}

// Register adds the counters to r.
func (m *Metrics) Register(r *metric.Registry) {
	r.MustAdd(metaAllocated.Name, m.Allocated)
}

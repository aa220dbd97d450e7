// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package metric

import (
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metadata holds the name and help text of a metric.
type Metadata struct {
	Name string
	Help string
}

// exportedName converts a dotted metric name to one Prometheus accepts.
func exportedName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

// Iterable is the interface implemented by every metric and by Registry.
type Iterable interface {
	// Each calls f with the name and current value of every metric under
	// this one.
	Each(f func(name string, val interface{}))
}

// Counter is a monotonically increasing count.
type Counter struct {
	Metadata
	count atomic.Int64
}

// NewCounter creates a counter.
func NewCounter(metadata Metadata) *Counter {
	return &Counter{Metadata: metadata}
}

// Inc increments the counter by the given amount, which must be positive.
func (c *Counter) Inc(v int64) {
	c.count.Add(v)
}

// Count returns the current value of the counter.
func (c *Counter) Count() int64 {
	return c.count.Load()
}

// Each implements the Iterable interface.
func (c *Counter) Each(f func(string, interface{})) {
	f("", c.Count())
}

func (c *Counter) desc() *prometheus.Desc {
	return prometheus.NewDesc(exportedName(c.Name), c.Help, nil, nil)
}

// Gauge holds a value that may go up and down.
type Gauge struct {
	Metadata
	value atomic.Int64
}

// NewGauge creates a gauge.
func NewGauge(metadata Metadata) *Gauge {
	return &Gauge{Metadata: metadata}
}

// Update sets the gauge's value.
func (g *Gauge) Update(v int64) {
	g.value.Store(v)
}

// Inc adds the given (possibly negative) amount to the gauge.
func (g *Gauge) Inc(v int64) {
	g.value.Add(v)
}

// Value returns the gauge's current value.
func (g *Gauge) Value() int64 {
	return g.value.Load()
}

// Each implements the Iterable interface.
func (g *Gauge) Each(f func(string, interface{})) {
	f("", g.Value())
}

func (g *Gauge) desc() *prometheus.Desc {
	return prometheus.NewDesc(exportedName(g.Name), g.Help, nil, nil)
}

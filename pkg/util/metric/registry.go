// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package metric provides counters and gauges grouped into registries that
// can be exported to Prometheus.
package metric

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/hkeyplan/hkeyplan/pkg/util/syncutil"
	"github.com/prometheus/client_golang/prometheus"
)

// A Registry bundles up various iterables (i.e. typically metrics or other
// registries) to provide a single point of access to them.
//
// A Registry can be added to another Registry through the Add/MustAdd
// methods. This allows a hierarchy of Registry instances to be created.
type Registry struct {
	syncutil.Mutex
	tracked map[string]Iterable
}

var _ prometheus.Collector = (*Registry)(nil)

// NewRegistry creates a new Registry.
func NewRegistry() *Registry {
	return &Registry{
		tracked: map[string]Iterable{},
	}
}

// Add links the given Iterable into this registry using the given format
// string. The individual items in the registry will be formatted via
// fmt.Sprintf(format, <name>). As a special case, *Registry implements
// Iterable and can thus be added.
func (r *Registry) Add(format string, item Iterable) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.tracked[format]; ok {
		return errors.Newf("format string %q already in use", format)
	}
	r.tracked[format] = item
	return nil
}

// MustAdd calls Add and panics on error.
func (r *Registry) MustAdd(format string, item Iterable) {
	if err := r.Add(format, item); err != nil {
		panic(errors.Wrapf(err, "adding %s", format))
	}
}

// Each calls the given closure for all metrics.
func (r *Registry) Each(f func(name string, val interface{})) {
	r.Lock()
	defer r.Unlock()
	for format, registry := range r.tracked {
		registry.Each(func(name string, v interface{}) {
			if name == "" {
				f(format, v)
			} else {
				f(fmt.Sprintf(format, name), v)
			}
		})
	}
}

// MarshalJSON marshals to JSON.
func (r *Registry) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{})
	r.Each(func(name string, v interface{}) {
		m[name] = v
	})
	return json.Marshal(m)
}

// Counter registers new counter to the registry.
func (r *Registry) Counter(metadata Metadata) *Counter {
	c := NewCounter(metadata)
	r.MustAdd(metadata.Name, c)
	return c
}

// GetCounter returns the Counter in this registry with the given name. If a
// Counter with this name is not present (including if a non-Counter Iterable
// is registered with the name), nil is returned.
func (r *Registry) GetCounter(name string) *Counter {
	r.Lock()
	defer r.Unlock()
	counter, _ := r.tracked[name].(*Counter)
	return counter
}

// Gauge registers a new Gauge with the given name.
func (r *Registry) Gauge(metadata Metadata) *Gauge {
	g := NewGauge(metadata)
	r.MustAdd(metadata.Name, g)
	return g
}

// GetGauge returns the Gauge in this registry with the given name, or nil.
func (r *Registry) GetGauge(name string) *Gauge {
	r.Lock()
	defer r.Unlock()
	gauge, _ := r.tracked[name].(*Gauge)
	return gauge
}

// Names returns the sorted names of all metrics, including those of nested
// registries.
func (r *Registry) Names() []string {
	var names []string
	r.Each(func(name string, _ interface{}) {
		names = append(names, name)
	})
	sort.Strings(names)
	return names
}

// Describe implements the prometheus.Collector interface.
func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	r.eachMetric(func(c *Counter) { ch <- c.desc() }, func(g *Gauge) { ch <- g.desc() })
}

// Collect implements the prometheus.Collector interface.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	r.eachMetric(
		func(c *Counter) {
			ch <- prometheus.MustNewConstMetric(c.desc(), prometheus.CounterValue, float64(c.Count()))
		},
		func(g *Gauge) {
			ch <- prometheus.MustNewConstMetric(g.desc(), prometheus.GaugeValue, float64(g.Value()))
		},
	)
}

func (r *Registry) eachMetric(counter func(*Counter), gauge func(*Gauge)) {
	r.Lock()
	items := make([]Iterable, 0, len(r.tracked))
	for _, item := range r.tracked {
		items = append(items, item)
	}
	r.Unlock()
	for _, item := range items {
		switch t := item.(type) {
		case *Counter:
			counter(t)
		case *Gauge:
			gauge(t)
		case *Registry:
			t.eachMetric(counter, gauge)
		}
	}
}

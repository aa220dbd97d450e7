// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import "github.com/hkeyplan/hkeyplan/pkg/sql/plan"

// RequiredColumns tracks, per table source of a query, the columns the rest
// of the plan reads. References to other sources are ignored.
type RequiredColumns struct {
	tables []*plan.TableSource
	cols   map[*plan.TableSource]map[plan.ColumnKey]struct{}
}

// NewRequiredColumns returns an empty set over tables.
func NewRequiredColumns(tables []*plan.TableSource) *RequiredColumns {
	r := &RequiredColumns{
		tables: tables,
		cols:   make(map[*plan.TableSource]map[plan.ColumnKey]struct{}, len(tables)),
	}
	for _, ts := range tables {
		r.cols[ts] = make(map[plan.ColumnKey]struct{})
	}
	return r
}

func (r *RequiredColumns) clone() *RequiredColumns {
	c := &RequiredColumns{
		tables: r.tables,
		cols:   make(map[*plan.TableSource]map[plan.ColumnKey]struct{}, len(r.cols)),
	}
	for ts, keys := range r.cols {
		m := make(map[plan.ColumnKey]struct{}, len(keys))
		for k := range keys {
			m[k] = struct{}{}
		}
		c.cols[ts] = m
	}
	return c
}

// Tables returns the tracked table sources.
func (r *RequiredColumns) Tables() []*plan.TableSource {
	return r.tables
}

func (r *RequiredColumns) require(c *plan.ColumnExpr) {
	ts, ok := c.Source.(*plan.TableSource)
	if !ok {
		return
	}
	if keys, ok := r.cols[ts]; ok {
		keys[c.Key()] = struct{}{}
	}
}

func (r *RequiredColumns) have(c *plan.ColumnExpr) {
	ts, ok := c.Source.(*plan.TableSource)
	if !ok {
		return
	}
	if keys, ok := r.cols[ts]; ok {
		delete(keys, c.Key())
	}
}

// HasColumns returns true if some column of ts is still required.
func (r *RequiredColumns) HasColumns(ts *plan.TableSource) bool {
	return len(r.cols[ts]) > 0
}

// Empty returns true if no column is required.
func (r *RequiredColumns) Empty() bool {
	for _, keys := range r.cols {
		if len(keys) > 0 {
			return false
		}
	}
	return true
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package metric

import (
	"encoding/json"
	"testing"

	"github.com/hkeyplan/hkeyplan/pkg/util/leaktest"
	"github.com/prometheus/client_golang/prometheus"
	prometheusgo "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	defer leaktest.AfterTest(t)()
	r := NewRegistry()
	c := r.Counter(Metadata{Name: "sql.opt.index.candidates", Help: "candidates"})
	g := r.Gauge(Metadata{Name: "sql.rowtype.live", Help: "live"})
	c.Inc(3)
	g.Update(7)
	g.Inc(-2)

	require.Same(t, c, r.GetCounter("sql.opt.index.candidates"))
	require.Nil(t, r.GetCounter("sql.rowtype.live"))
	require.Same(t, g, r.GetGauge("sql.rowtype.live"))
	require.Error(t, r.Add("sql.rowtype.live", NewGauge(Metadata{})))

	sub := NewRegistry()
	sub.Counter(Metadata{Name: "selected"})
	r.MustAdd("sub.%s", sub)
	require.Equal(t, []string{"sql.opt.index.candidates", "sql.rowtype.live", "sub.selected"}, r.Names())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded map[string]int64
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, int64(3), decoded["sql.opt.index.candidates"])
	require.Equal(t, int64(5), decoded["sql.rowtype.live"])
}

func TestPrometheusExport(t *testing.T) {
	defer leaktest.AfterTest(t)()
	r := NewRegistry()
	r.Counter(Metadata{Name: "sql.opt.index.selected", Help: "selected"}).Inc(2)

	preg := prometheus.NewPedanticRegistry()
	require.NoError(t, preg.Register(r))
	families, err := preg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, "sql_opt_index_selected", families[0].GetName())
	require.Equal(t, prometheusgo.MetricType_COUNTER, families[0].GetType())
	require.Equal(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue())
}

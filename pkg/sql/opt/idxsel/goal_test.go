// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/hkeyplan/hkeyplan/pkg/settings"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/catyaml"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan/planyaml"
	"github.com/hkeyplan/hkeyplan/pkg/sql/rowtype"
	"github.com/hkeyplan/hkeyplan/pkg/util/leaktest"
	"github.com/hkeyplan/hkeyplan/pkg/util/log"
)

func scopeOf(q *planyaml.Query) Scope {
	return Scope{
		BoundTables:      q.Bound,
		ConditionSources: q.ConditionSources(),
		Grouping:         q.Aggregate,
		Ordering:         q.Sort,
		ProjectDistinct:  q.ProjectDistinct(),
	}
}

type goalTest struct {
	schema  *cat.Schema
	env     Env
	q       *planyaml.Query
	g       *Goal
	picked  *SingleIndexScan
	logged  []string
	logging bool
}

// TestGoal runs the index goal through the testdata files. The commands
// are:
//
//	schema: loads the YAML schema in the input.
//	query: parses the query shape in the input and builds a goal for it.
//	set <key>=<value> ...: overrides settings.
//	reset <key> ...: restores settings to their defaults.
//	usable table=<alias> index=<name>: analyzes one table index.
//	span table=<alias> index=<name>: checks whether the join shape fits a
//	  group index whose leaf-most table is the given one.
//	pick [table=<alias>] [log]: picks the best index for one table, or over
//	  all tables of the query.
//	install: installs the last picked index and prints the plan.
func TestGoal(t *testing.T) {
	defer leaktest.AfterTest(t)()
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		gt := &goalTest{env: Env{Settings: settings.NewValues(), Metrics: NewMetrics()}}
		defer log.Intercept(func(_ log.Severity, msg string) {
			if gt.logging {
				gt.logged = append(gt.logged, msg)
			}
		})()
		defer log.SetVModule(2)()
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			return gt.run(t, d)
		})
	})
}

func (gt *goalTest) run(t *testing.T, d *datadriven.TestData) string {
	switch d.Cmd {
	case "schema":
		var err error
		if gt.schema, err = catyaml.Load([]byte(d.Input)); err != nil {
			d.Fatalf(t, "%v", err)
		}
		gt.env.RowTypes = rowtype.NewSchema(gt.schema, nil)
		return ""

	case "query":
		var err error
		if gt.q, err = planyaml.Load(gt.schema, []byte(d.Input)); err != nil {
			return fmt.Sprintf("error: %v\n", err)
		}
		if gt.g, err = NewGoal(gt.env, gt.q.Root, scopeOf(gt.q), gt.q.Tables); err != nil {
			return fmt.Sprintf("error: %v\n", err)
		}
		gt.picked = nil
		return ""

	case "set":
		for _, arg := range d.CmdArgs {
			if err := gt.env.Settings.Set(arg.Key, arg.Vals[0]); err != nil {
				return fmt.Sprintf("error: %v\n", err)
			}
		}
		return ""

	case "reset":
		for _, arg := range d.CmdArgs {
			if err := gt.env.Settings.Reset(arg.Key); err != nil {
				return fmt.Sprintf("error: %v\n", err)
			}
		}
		return ""

	case "usable":
		ts, ix := gt.tableIndex(t, d)
		s := NewTableIndexScan(ix, ts)
		ok, err := gt.g.Usable(s)
		if err != nil {
			return fmt.Sprintf("error: %v\n", err)
		}
		var buf strings.Builder
		fmt.Fprintf(&buf, "usable: %t\n", ok)
		formatScan(&buf, s)
		return buf.String()

	case "span":
		var alias, name string
		d.ScanArgs(t, "table", &alias)
		d.ScanArgs(t, "index", &name)
		ts := gt.table(t, d, alias)
		var ix *cat.Index
		for _, gi := range ts.Group.Group.Indexes {
			if gi.Name == name {
				ix = gi
			}
		}
		if ix == nil {
			d.Fatalf(t, "no group index %s", name)
		}
		var s *SingleIndexScan
		if ix.JoinType == cat.IndexJoinLeft {
			s = leftJoinCandidate(ix, ts, gt.q.RequiredTables())
		} else {
			s = innerJoinCandidate(ix, ts)
		}
		if s == nil {
			return "reject\n"
		}
		return fmt.Sprintf("accept: root-required=%s leaf-required=%s\n",
			s.RootRequired.Table.Name, s.LeafRequired.Table.Name)

	case "pick":
		m := gt.env.Metrics
		before := [3]int64{m.Candidates.Count(), m.Usable.Count(), m.RejectedHierarchy.Count()}
		gt.logging, gt.logged = d.HasArg("log"), nil
		var err error
		ctx := context.Background()
		var alias string
		if d.MaybeScanArgs(t, "table", &alias) {
			gt.picked, err = gt.g.PickBestIndex(ctx, gt.table(t, d, alias), gt.q.RequiredTables())
		} else {
			gt.picked, err = gt.g.PickBestIndexForTables(ctx, gt.q.Tables, gt.q.RequiredTables())
		}
		gt.logging = false
		if err != nil {
			return fmt.Sprintf("error: %v\n", err)
		}
		var buf strings.Builder
		for _, msg := range gt.logged {
			fmt.Fprintln(&buf, stripGoalTag(msg))
		}
		if gt.picked == nil {
			buf.WriteString("no index\n")
		} else {
			formatScan(&buf, gt.picked)
		}
		fmt.Fprintf(&buf, "candidates: %d, usable: %d, rejected by join shape: %d\n",
			m.Candidates.Count()-before[0], m.Usable.Count()-before[1],
			m.RejectedHierarchy.Count()-before[2])
		return buf.String()

	case "install":
		if gt.picked == nil {
			d.Fatalf(t, "no index picked")
		}
		if err := gt.g.InstallUpstream(gt.picked); err != nil {
			return fmt.Sprintf("error: %v\n", err)
		}
		return fmt.Sprintf("%sneed sort: %t\n", plan.Format(gt.q.Root), gt.g.NeedSort(gt.picked))
	}
	d.Fatalf(t, "unknown command %s", d.Cmd)
	return ""
}

func (gt *goalTest) table(t *testing.T, d *datadriven.TestData, alias string) *plan.TableSource {
	ts := gt.q.Table(alias)
	if ts == nil {
		d.Fatalf(t, "unknown table %s", alias)
	}
	return ts
}

func (gt *goalTest) tableIndex(t *testing.T, d *datadriven.TestData) (*plan.TableSource, *cat.Index) {
	var alias, name string
	d.ScanArgs(t, "table", &alias)
	d.ScanArgs(t, "index", &name)
	ts := gt.table(t, d, alias)
	for _, ix := range ts.Table.Indexes {
		if ix.Name == name {
			return ts, ix
		}
	}
	d.Fatalf(t, "no index %s on %s", name, ts.Table.Name)
	return nil, nil
}

// stripGoalTag rewrites "[goal=N,table=T] msg" as "T: msg".
func stripGoalTag(msg string) string {
	end := strings.Index(msg, "] ")
	if !strings.HasPrefix(msg, "[") || end < 0 {
		return msg
	}
	tags := msg[1:end]
	return tags[strings.LastIndexByte(tags, '=')+1:] + ": " + msg[end+2:]
}

func formatScan(buf *strings.Builder, s *SingleIndexScan) {
	fmt.Fprintln(buf, s)
	parts := make([]string, len(s.Ordering))
	for i, o := range s.Ordering {
		dir := "ASC"
		if !o.Ascending {
			dir = "DESC"
		}
		if o.Expr == nil {
			parts[i] = "? " + dir
		} else {
			parts[i] = o.Expr.String() + " " + dir
		}
	}
	fmt.Fprintf(buf, "ordering: %s\n", strings.Join(parts, ", "))
	if len(s.Conditions) > 0 {
		conds := make([]string, len(s.Conditions))
		for i, c := range s.Conditions {
			conds[i] = c.String()
		}
		fmt.Fprintf(buf, "conditions: %s\n", strings.Join(conds, ", "))
	}
	var tables []string
	for ts := range s.RequiredTables {
		tables = append(tables, ts.Table.Name)
	}
	sort.Strings(tables)
	if len(tables) == 0 {
		tables = append(tables, "none")
	}
	fmt.Fprintf(buf, "required tables: %s\n", strings.Join(tables, ", "))
}

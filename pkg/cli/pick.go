// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hkeyplan/hkeyplan/pkg/sql/opt/idxsel"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan"
	"github.com/hkeyplan/hkeyplan/pkg/sql/plan/planyaml"
	"github.com/hkeyplan/hkeyplan/pkg/sql/rowtype"
	"github.com/hkeyplan/hkeyplan/pkg/util/metric"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var pickCmd = &cobra.Command{
	Use:   "pick --schema=<file> --query=<file> [--config=<file>]",
	Short: "pick the index for a query shape",
	Long: `
Analyzes every table index of the query's tables against the query, picks the
best index over all tables, group indexes included, and prints the plan with
the index installed.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPick(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	f := pickCmd.Flags()
	addSchemaFlag(f)
	addQueryFlag(f)
	addConfigFlag(f)
}

func scopeOf(q *planyaml.Query) idxsel.Scope {
	return idxsel.Scope{
		BoundTables:      q.Bound,
		ConditionSources: q.ConditionSources(),
		Grouping:         q.Aggregate,
		Ordering:         q.Sort,
		ProjectDistinct:  q.ProjectDistinct(),
	}
}

func runPick(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	catalog, err := loadSchema()
	if err != nil {
		return err
	}
	if cliCtx.queryPath == "" {
		return errors.WithHint(errors.New("no query given"), "pass --query=<file>")
	}
	q, err := planyaml.LoadFile(catalog, cliCtx.queryPath)
	if err != nil {
		return err
	}
	sv, err := loadSettings()
	if err != nil {
		return err
	}

	registry := metric.NewRegistry()
	metrics := idxsel.NewMetrics()
	metrics.Register(registry)
	rtMetrics := rowtype.NewMetrics()
	rtMetrics.Register(registry)
	env := idxsel.Env{
		Settings: sv,
		Metrics:  metrics,
		RowTypes: rowtype.NewSchema(catalog, rtMetrics),
	}
	g, err := idxsel.NewGoal(env, q.Root, scopeOf(q), q.Tables)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"table", "index", "usable", "order", "covering", "conditions"})
	for _, ts := range q.Tables {
		for _, ix := range ts.Table.Indexes {
			s := idxsel.NewTableIndexScan(ix, ts)
			ok, err := g.Usable(s)
			if err != nil {
				return err
			}
			conds := make([]string, len(s.Conditions))
			for i, c := range s.Conditions {
				conds[i] = c.String()
			}
			table.Append([]string{
				ts.Table.Name,
				ix.Name,
				strconv.FormatBool(ok),
				s.OrderEffectiveness.String(),
				strconv.FormatBool(s.Covering),
				strings.Join(conds, " AND "),
			})
		}
	}
	table.Render()

	best, err := g.PickBestIndexForTables(ctx, q.Tables, q.RequiredTables())
	if err != nil {
		return err
	}
	if best == nil {
		fmt.Fprintln(w, "no index")
	} else {
		fmt.Fprintf(w, "picked: %s\n", best)
		if err := g.InstallUpstream(best); err != nil {
			return err
		}
		fmt.Fprint(w, plan.Format(q.Root))
		fmt.Fprintf(w, "need sort: %t\n", g.NeedSort(best))
	}
	for _, name := range registry.Names() {
		fmt.Fprintf(w, "%s: %d\n", name, registry.GetCounter(name).Count())
	}
	return nil
}

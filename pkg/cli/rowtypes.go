// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/hkeyplan/hkeyplan/pkg/sql/rowtype"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var rowTypesCmd = &cobra.Command{
	Use:   "rowtypes --schema=<file>",
	Short: "list the row types of a schema",
	Long: `
Prints the row type of every table, hkey and index of the schema, in id
order, with the types of their fields.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRowTypes(cmd.OutOrStdout())
	},
}

func init() {
	addSchemaFlag(rowTypesCmd.Flags())
}

func runRowTypes(w io.Writer) error {
	catalog, err := loadSchema()
	if err != nil {
		return err
	}
	s := rowtype.NewSchema(catalog, nil)
	var all []*rowtype.RowType
	for _, t := range catalog.Tables() {
		all = append(all, s.TableRowType(t))
	}
	for _, t := range catalog.Tables() {
		all = append(all, s.HKeyRowType(t))
	}
	for _, ix := range catalog.Indexes() {
		all = append(all, s.IndexRowType(ix))
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"id", "row type", "composition", "fields"})
	for _, r := range all {
		fields := make([]string, r.NFields())
		for i := range fields {
			fields[i] = r.TypeAt(i).String()
		}
		table.Append([]string{
			fmt.Sprint(r.ID()),
			r.String(),
			r.Composition().String(),
			strings.Join(fields, ", "),
		})
	}
	table.Render()
	fmt.Fprintf(w, "(%d row types)\n", len(all))
	return nil
}

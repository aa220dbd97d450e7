// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cli implements the hkeyplan command line tool, which runs index
// selection over schema and query shapes described in YAML.
package cli

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var hkeyplanCmd = &cobra.Command{
	Use:   "hkeyplan [command] (flags)",
	Short: "index selection for hierarchical table groups",
	Long: `
Loads a schema of table groups and a query shape, and shows the row types
and the index the planner picks for the query.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.EnableCommandSorting = false

	addVerbosityFlag(hkeyplanCmd.PersistentFlags())
	hkeyplanCmd.PersistentPreRun = func(*cobra.Command, []string) {
		applyVerbosity()
	}
	hkeyplanCmd.AddCommand(
		pickCmd,
		rowTypesCmd,
		settingsCmd,
	)
}

// Main is the entry point for the hkeyplan binary.
func Main() {
	if err := Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "HINT: %s\n", hint)
		}
		os.Exit(1)
	}
}

// Run executes the command line in args.
func Run(args []string) error {
	hkeyplanCmd.SetArgs(args)
	return hkeyplanCmd.Execute()
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"io"

	"github.com/hkeyplan/hkeyplan/pkg/settings"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings [--config=<file>]",
	Short: "list the registered settings",
	Long: `
Lists every registered setting with its type, its current value after the
overrides of --config, and its description.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSettings(cmd.OutOrStdout())
	},
}

func init() {
	addConfigFlag(settingsCmd.Flags())
}

var settingTypes = map[string]string{"b": "bool", "i": "int"}

func runSettings(w io.Writer) error {
	sv, err := loadSettings()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"setting", "type", "value", "default", "description"})
	for _, key := range settings.Keys() {
		s, desc, _ := settings.Lookup(key)
		table.Append([]string{key, settingTypes[s.Typ()], s.String(sv), s.DefaultString(), desc})
	}
	table.Render()
	return nil
}

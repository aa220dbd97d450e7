// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/hkeyplan/hkeyplan/pkg/settings"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/catyaml"
	"github.com/hkeyplan/hkeyplan/pkg/util/log"
	"github.com/spf13/pflag"
)

// cliCtx holds the values of the command line flags.
var cliCtx struct {
	schemaPath string
	queryPath  string
	configPath string
	verbosity  int32
}

func addVerbosityFlag(f *pflag.FlagSet) {
	f.Int32VarP(&cliCtx.verbosity, "verbosity", "v", 0,
		"log verbosity; 2 logs every index candidate decision")
}

func addSchemaFlag(f *pflag.FlagSet) {
	f.StringVar(&cliCtx.schemaPath, "schema", "", "path to the YAML schema")
}

func addQueryFlag(f *pflag.FlagSet) {
	f.StringVar(&cliCtx.queryPath, "query", "", "path to the YAML query shape")
}

func addConfigFlag(f *pflag.FlagSet) {
	f.StringVar(&cliCtx.configPath, "config", "",
		"path to a YAML file of setting overrides")
}

var restoreVerbosity = func() {}

func applyVerbosity() {
	restoreVerbosity()
	restoreVerbosity = func() {}
	if cliCtx.verbosity > 0 {
		restoreVerbosity = log.SetVModule(cliCtx.verbosity)
	}
}

func loadSchema() (*cat.Schema, error) {
	if cliCtx.schemaPath == "" {
		return nil, errors.WithHint(errors.New("no schema given"), "pass --schema=<file>")
	}
	return catyaml.LoadFile(cliCtx.schemaPath)
}

// loadSettings returns the setting values with the overrides of the
// --config file applied, and installs them for logging.
func loadSettings() (*settings.Values, error) {
	sv := settings.NewValues()
	if cliCtx.configPath != "" {
		data, err := os.ReadFile(cliCtx.configPath)
		if err != nil {
			return nil, errors.Wrap(err, "reading settings")
		}
		if err := sv.LoadYAML(data); err != nil {
			return nil, errors.Wrapf(err, "loading %s", cliCtx.configPath)
		}
	}
	log.SetValues(sv)
	return sv, nil
}

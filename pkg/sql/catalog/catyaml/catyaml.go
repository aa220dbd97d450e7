// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package catyaml loads a cat.Schema from a YAML description. The format is
//
//	tables:
//	  - name: customers
//	    columns: [cid INT, name "VARCHAR(32)" NULL]
//	    primary_key: [cid]
//	  - name: orders
//	    parent: customers
//	    parent_join: [cid]
//	    columns: [oid INT, cid INT, odate DATE]
//	    primary_key: [oid]
//	indexes:
//	  - name: odate
//	    table: orders
//	    columns: [odate DESC]
//	  - name: name_odate
//	    group: customers
//	    join: LEFT
//	    columns: [customers.name, orders.odate]
//
// Column entries are "name TYPE [NULL]". Index column entries are
// "[table.]column [ASC|DESC]".
package catyaml

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/shlex"
	"github.com/hkeyplan/hkeyplan/pkg/sql/catalog/cat"
	"github.com/hkeyplan/hkeyplan/pkg/sql/types"
	"gopkg.in/yaml.v2"
)

type tableYAML struct {
	Name       string   `yaml:"name"`
	Parent     string   `yaml:"parent"`
	ParentJoin []string `yaml:"parent_join"`
	Columns    []string `yaml:"columns"`
	PrimaryKey []string `yaml:"primary_key"`
}

type indexYAML struct {
	Name    string   `yaml:"name"`
	Table   string   `yaml:"table"`
	Group   string   `yaml:"group"`
	Join    string   `yaml:"join"`
	Unique  bool     `yaml:"unique"`
	Spatial int      `yaml:"spatial"`
	Columns []string `yaml:"columns"`
}

type schemaYAML struct {
	Tables  []tableYAML `yaml:"tables"`
	Indexes []indexYAML `yaml:"indexes"`
}

// Load parses data and creates the described tables and indexes, in order.
func Load(data []byte) (*cat.Schema, error) {
	var sy schemaYAML
	if err := yaml.UnmarshalStrict(data, &sy); err != nil {
		return nil, errors.Wrap(err, "parsing schema")
	}
	s := cat.NewSchema()
	for i := range sy.Tables {
		def, err := sy.Tables[i].def()
		if err != nil {
			return nil, err
		}
		if _, err := s.CreateTable(def); err != nil {
			return nil, err
		}
	}
	for i := range sy.Indexes {
		def, err := sy.Indexes[i].def()
		if err != nil {
			return nil, err
		}
		if _, err := s.CreateIndex(def); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadFile reads and loads the schema file at path.
func LoadFile(path string) (*cat.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema %s", path)
	}
	s, err := Load(data)
	return s, errors.Wrapf(err, "loading schema %s", path)
}

func (ty *tableYAML) def() (cat.TableDef, error) {
	def := cat.TableDef{
		Name:       ty.Name,
		PrimaryKey: ty.PrimaryKey,
		Parent:     ty.Parent,
		ParentJoin: ty.ParentJoin,
	}
	for _, entry := range ty.Columns {
		fields, err := shlex.Split(entry)
		if err != nil {
			return def, errors.Wrapf(err, "table %s: column %q", ty.Name, entry)
		}
		if len(fields) < 2 || len(fields) > 3 {
			return def, errors.WithHint(
				errors.Newf("table %s: malformed column %q", ty.Name, entry),
				`a column is written as "name TYPE" or "name TYPE NULL"`,
			)
		}
		typ, err := types.Parse(fields[1])
		if err != nil {
			return def, errors.Wrapf(err, "table %s", ty.Name)
		}
		cd := cat.ColumnDef{Name: fields[0], Type: typ}
		if len(fields) == 3 {
			if !strings.EqualFold(fields[2], "NULL") {
				return def, errors.Newf("table %s: unexpected %q in column %q", ty.Name, fields[2], entry)
			}
			cd.Nullable = true
		}
		def.Columns = append(def.Columns, cd)
	}
	return def, nil
}

func (iy *indexYAML) def() (cat.IndexDef, error) {
	def := cat.IndexDef{
		Name:           iy.Name,
		Table:          iy.Table,
		Group:          iy.Group,
		Unique:         iy.Unique,
		SpatialColumns: iy.Spatial,
	}
	switch strings.ToUpper(iy.Join) {
	case "", "LEFT":
		def.JoinType = cat.IndexJoinLeft
	case "INNER":
		def.JoinType = cat.IndexJoinInner
	default:
		return def, errors.Newf("index %s: unknown join type %q", iy.Name, iy.Join)
	}
	if iy.Join != "" && iy.Group == "" {
		return def, errors.Newf("index %s: join type only applies to group indexes", iy.Name)
	}
	for _, entry := range iy.Columns {
		fields, err := shlex.Split(entry)
		if err != nil {
			return def, errors.Wrapf(err, "index %s: column %q", iy.Name, entry)
		}
		if len(fields) < 1 || len(fields) > 2 {
			return def, errors.Newf("index %s: malformed column %q", iy.Name, entry)
		}
		var cd cat.IndexColumnDef
		if dot := strings.IndexByte(fields[0], '.'); dot >= 0 {
			cd.Table, cd.Column = fields[0][:dot], fields[0][dot+1:]
		} else {
			cd.Column = fields[0]
		}
		if len(fields) == 2 {
			switch strings.ToUpper(fields[1]) {
			case "ASC":
			case "DESC":
				cd.Descending = true
			default:
				return def, errors.Newf("index %s: unexpected %q in column %q", iy.Name, fields[1], entry)
			}
		}
		def.Columns = append(def.Columns, cd)
	}
	return def, nil
}

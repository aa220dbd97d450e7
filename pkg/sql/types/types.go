// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package types is the minimal value-type surface the planner needs: a
// family, an optional width, and identity comparison. Collation and string
// comparison semantics live elsewhere.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Family is the broad category of a value type.
type Family int32

const (
	// UnknownFamily is the type of an expression whose type has not been
	// resolved, e.g. a bare NULL.
	UnknownFamily Family = iota
	BoolFamily
	IntFamily
	FloatFamily
	DecimalFamily
	StringFamily
	BytesFamily
	DateFamily
	TimestampFamily
	// ZValueFamily is the type of a spatial z-order key computed from two or
	// more coordinate columns. Its encoding cannot be turned back into the
	// source coordinates.
	ZValueFamily
)

var familyNames = [...]string{
	UnknownFamily:   "unknown",
	BoolFamily:      "bool",
	IntFamily:       "int",
	FloatFamily:     "float",
	DecimalFamily:   "decimal",
	StringFamily:    "string",
	BytesFamily:     "bytes",
	DateFamily:      "date",
	TimestampFamily: "timestamp",
	ZValueFamily:    "zvalue",
}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("Family(%d)", int32(f))
	}
	return familyNames[f]
}

// SafeValue implements the redact.SafeValue interface.
func (Family) SafeValue() {}

// T is a value type. Types are compared with Identical; a *T is never
// mutated once created.
type T struct {
	Family Family
	// Width is the maximum length of string and bytes types, or zero when
	// unbounded or not applicable.
	Width int32
}

// Common types.
var (
	Unknown   = &T{Family: UnknownFamily}
	Bool      = &T{Family: BoolFamily}
	Int       = &T{Family: IntFamily}
	Float     = &T{Family: FloatFamily}
	Decimal   = &T{Family: DecimalFamily}
	String    = &T{Family: StringFamily}
	Bytes     = &T{Family: BytesFamily}
	Date      = &T{Family: DateFamily}
	Timestamp = &T{Family: TimestampFamily}
	ZValue    = &T{Family: ZValueFamily}
)

// MakeString returns a string type limited to the given width.
func MakeString(width int32) *T {
	if width == 0 {
		return String
	}
	return &T{Family: StringFamily, Width: width}
}

// Identical returns true if t and other describe the same type.
func (t *T) Identical(other *T) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.Family == other.Family && t.Width == other.Width
}

// Comparable returns true if values of the two types can be ordered against
// each other, which is what the range analysis needs.
func (t *T) Comparable(other *T) bool {
	if t.Family == UnknownFamily || other.Family == UnknownFamily {
		return false
	}
	if t.Family == other.Family {
		return true
	}
	return t.numeric() && other.numeric()
}

func (t *T) numeric() bool {
	switch t.Family {
	case IntFamily, FloatFamily, DecimalFamily:
		return true
	}
	return false
}

func (t *T) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Width != 0 {
		return fmt.Sprintf("%s(%d)", t.Family, t.Width)
	}
	return t.Family.String()
}

// SafeFormat implements the redact.SafeFormatter interface.
func (t *T) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString(redact.SafeString(t.String()))
}

// Parse resolves a SQL type name such as "int", "bigint", "varchar(32)" or
// "decimal(10,2)" to a type.
func Parse(name string) (*T, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	var arg string
	if open := strings.IndexByte(s, '('); open >= 0 {
		if !strings.HasSuffix(s, ")") {
			return nil, errors.Newf("malformed type name %q", name)
		}
		arg = s[open+1 : len(s)-1]
		s = strings.TrimSpace(s[:open])
	}
	switch s {
	case "bool", "boolean":
		return Bool, nil
	case "int", "integer", "bigint", "smallint", "int2", "int4", "int8":
		return Int, nil
	case "float", "double", "real", "float4", "float8":
		return Float, nil
	case "decimal", "numeric":
		return Decimal, nil
	case "string", "text", "varchar", "char":
		if arg == "" {
			return String, nil
		}
		width, err := strconv.ParseInt(arg, 10, 32)
		if err != nil || width <= 0 {
			return nil, errors.Newf("invalid width in type name %q", name)
		}
		return MakeString(int32(width)), nil
	case "bytes", "blob", "bytea":
		return Bytes, nil
	case "date":
		return Date, nil
	case "timestamp", "datetime":
		return Timestamp, nil
	case "zvalue":
		return ZValue, nil
	}
	return nil, errors.Newf("unknown type name %q", name)
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// Setting is the interface exposing the metadata for a setting.
type Setting interface {
	// Key returns the name of the setting.
	Key() string
	// Description returns the help text.
	Description() string
	// Typ returns the short type name ("b" for bool, "i" for int).
	Typ() string
	// String returns the current value rendered as text.
	String(sv *Values) string
	// DefaultString returns the default value rendered as text.
	DefaultString() string
}

type internalSetting interface {
	Setting
	init(key, desc string, slot int)
	decodeAndSet(sv *Values, raw string) error
	slotIndex() int
}

type common struct {
	key         string
	description string
	slot        int
}

func (c *common) init(key, desc string, slot int) {
	c.key = key
	c.description = desc
	c.slot = slot
}

func (c *common) slotIndex() int { return c.slot }

// Key implements the Setting interface.
func (c *common) Key() string { return c.key }

// Description implements the Setting interface.
func (c *common) Description() string { return c.description }

// BoolSetting is the interface of a setting variable that will be
// updated automatically when the corresponding cluster-wide setting
// of type "bool" is updated.
type BoolSetting struct {
	common
	defaultValue bool
}

var _ Setting = &BoolSetting{}

// RegisterBoolSetting defines a new setting with type bool.
func RegisterBoolSetting(key, desc string, defaultValue bool) *BoolSetting {
	s := &BoolSetting{defaultValue: defaultValue}
	register(key, desc, s)
	return s
}

// Get retrieves the bool value in the setting.
func (b *BoolSetting) Get(sv *Values) bool {
	v, ok := sv.get(b.slot)
	if !ok {
		return b.defaultValue
	}
	return v != 0
}

// Override changes the setting without validation.
func (b *BoolSetting) Override(sv *Values, v bool) {
	var i int64
	if v {
		i = 1
	}
	sv.set(b.slot, i)
}

// Typ returns the short (1 char) string denoting the type of setting.
func (*BoolSetting) Typ() string { return "b" }

func (b *BoolSetting) String(sv *Values) string { return strconv.FormatBool(b.Get(sv)) }

// DefaultString implements the Setting interface.
func (b *BoolSetting) DefaultString() string { return strconv.FormatBool(b.defaultValue) }

func (b *BoolSetting) decodeAndSet(sv *Values, raw string) error {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid value for %s", b.key)
	}
	b.Override(sv, v)
	return nil
}

// IntSetting is the interface of a setting variable that will be
// updated automatically when the corresponding cluster-wide setting
// of type "int" is updated.
type IntSetting struct {
	common
	defaultValue int64
	validateFn   func(int64) error
}

var _ Setting = &IntSetting{}

// RegisterIntSetting defines a new setting with type int. The optional
// validation function is applied to values set from text.
func RegisterIntSetting(
	key, desc string, defaultValue int64, validateFn func(int64) error,
) *IntSetting {
	if validateFn != nil {
		if err := validateFn(defaultValue); err != nil {
			panic(errors.Wrap(err, "invalid default"))
		}
	}
	s := &IntSetting{defaultValue: defaultValue, validateFn: validateFn}
	register(key, desc, s)
	return s
}

// NonNegativeInt can be passed to RegisterIntSetting.
func NonNegativeInt(v int64) error {
	if v < 0 {
		return errors.Errorf("cannot set to a negative value: %d", v)
	}
	return nil
}

// Get retrieves the int value in the setting.
func (i *IntSetting) Get(sv *Values) int64 {
	v, ok := sv.get(i.slot)
	if !ok {
		return i.defaultValue
	}
	return v
}

// Override changes the setting without validation.
func (i *IntSetting) Override(sv *Values, v int64) {
	sv.set(i.slot, v)
}

// Typ returns the short (1 char) string denoting the type of setting.
func (*IntSetting) Typ() string { return "i" }

func (i *IntSetting) String(sv *Values) string { return strconv.FormatInt(i.Get(sv), 10) }

// DefaultString implements the Setting interface.
func (i *IntSetting) DefaultString() string { return strconv.FormatInt(i.defaultValue, 10) }

func (i *IntSetting) decodeAndSet(sv *Values, raw string) error {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid value for %s", i.key)
	}
	if i.validateFn != nil {
		if err := i.validateFn(v); err != nil {
			return errors.Wrapf(err, "invalid value for %s", i.key)
		}
	}
	i.Override(sv, v)
	return nil
}

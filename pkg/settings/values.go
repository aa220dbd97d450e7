// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v2"
)

// Values is a container that stores values for all registered settings.
// Settings that were never set read as their default. Values is safe for
// concurrent use.
type Values struct {
	slots [MaxSettings]struct {
		set   atomic.Bool
		value atomic.Int64
	}
}

// NewValues returns a container in which every setting has its default.
func NewValues() *Values {
	return &Values{}
}

func (sv *Values) get(slot int) (int64, bool) {
	s := &sv.slots[slot]
	if !s.set.Load() {
		return 0, false
	}
	return s.value.Load(), true
}

func (sv *Values) set(slot int, v int64) {
	s := &sv.slots[slot]
	s.value.Store(v)
	s.set.Store(true)
}

// Reset restores the default of the named setting.
func (sv *Values) Reset(key string) error {
	w, ok := registry[key]
	if !ok {
		return errors.Newf("unknown setting %q", key)
	}
	sv.slots[w.setting.(internalSetting).slotIndex()].set.Store(false)
	return nil
}

// Set parses raw and stores it as the value of the named setting.
func (sv *Values) Set(key, raw string) error {
	w, ok := registry[key]
	if !ok {
		return errors.WithHint(
			errors.Newf("unknown setting %q", key),
			"run \"hkeyplan settings\" to list the known settings",
		)
	}
	return w.setting.(internalSetting).decodeAndSet(sv, raw)
}

// LoadYAML applies the overrides in data, a YAML map from setting key to
// value. Keys are applied in sorted order and the first failure is returned.
func (sv *Values) LoadYAML(data []byte) error {
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return errors.Wrap(err, "parsing settings")
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := sv.Set(k, fmt.Sprint(m[k])); err != nil {
			return err
		}
	}
	return nil
}

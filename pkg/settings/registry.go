// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package settings implements typed, registered configuration knobs whose
// per-session values live in a Values container.
package settings

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// MaxSettings is the maximum number of settings that can be registered.
const MaxSettings = 64

// registry contains all defined settings, their types and default values.
//
// Registry should never be mutated after init (except in tests), as it is read
// concurrently by different callers.
var registry = map[string]wrappedSetting{}

// slotTable maps a slot index to its setting.
var slotTable [MaxSettings]Setting

// frozen becomes non-zero once the registry is "live".
var frozen int32

// Freeze ensures that no new settings can be defined.
func Freeze() { atomic.StoreInt32(&frozen, 1) }

func assertNotFrozen(key string) {
	if atomic.LoadInt32(&frozen) > 0 {
		panic(fmt.Sprintf("registration must occur before the registry is frozen: %s", key))
	}
}

type wrappedSetting struct {
	description string
	hidden      bool
	setting     Setting
}

// register adds a setting to the registry.
func register(key, desc string, s internalSetting) {
	assertNotFrozen(key)
	if _, ok := registry[key]; ok {
		panic(fmt.Sprintf("setting already defined: %s", key))
	}
	slot := len(registry)
	if slot >= MaxSettings {
		panic(fmt.Sprintf("too many settings; increase MaxSettings: %s", key))
	}
	s.init(key, desc, slot)
	slotTable[slot] = s
	registry[key] = wrappedSetting{description: desc, setting: s}
}

// Hide prevents a setting from showing up in Keys. It can still be looked up
// if the exact name is known.
func Hide(key string) {
	assertNotFrozen(key)
	s, ok := registry[key]
	if !ok {
		panic(fmt.Sprintf("setting not found: %s", key))
	}
	s.hidden = true
	registry[key] = s
}

// Keys returns a sorted string array with all the known keys.
func Keys() (res []string) {
	res = make([]string, 0, len(registry))
	for k := range registry {
		if registry[k].hidden {
			continue
		}
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Lookup returns a Setting by name along with its description.
func Lookup(name string) (Setting, string, bool) {
	v, ok := registry[name]
	if !ok {
		return nil, "", false
	}
	return v.setting, v.description, true
}

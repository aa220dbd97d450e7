// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"testing"

	"github.com/hkeyplan/hkeyplan/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

var boolSetting = RegisterBoolSetting("test.bool", "a bool", true)
var intSetting = RegisterIntSetting("test.int", "an int", 2, NonNegativeInt)
var hiddenSetting = RegisterIntSetting("test.hidden", "hidden", 0, nil)

func init() {
	Hide("test.hidden")
}

func TestDefaultsAndOverrides(t *testing.T) {
	defer leaktest.AfterTest(t)()
	sv := NewValues()
	require.True(t, boolSetting.Get(sv))
	require.Equal(t, int64(2), intSetting.Get(sv))

	boolSetting.Override(sv, false)
	intSetting.Override(sv, 7)
	require.False(t, boolSetting.Get(sv))
	require.Equal(t, int64(7), intSetting.Get(sv))
	require.Equal(t, "7", intSetting.String(sv))
	require.Equal(t, "2", intSetting.DefaultString())

	// Another container is unaffected.
	require.True(t, boolSetting.Get(NewValues()))

	require.NoError(t, sv.Reset("test.int"))
	require.Equal(t, int64(2), intSetting.Get(sv))
}

func TestSet(t *testing.T) {
	defer leaktest.AfterTest(t)()
	sv := NewValues()
	require.NoError(t, sv.Set("test.bool", "false"))
	require.False(t, boolSetting.Get(sv))
	require.Error(t, sv.Set("test.bool", "maybe"))
	require.Error(t, sv.Set("test.int", "-1"))
	require.Error(t, sv.Set("test.nope", "1"))
}

func TestLoadYAML(t *testing.T) {
	defer leaktest.AfterTest(t)()
	sv := NewValues()
	require.NoError(t, sv.LoadYAML([]byte("test.bool: false\ntest.int: 5\n")))
	require.False(t, boolSetting.Get(sv))
	require.Equal(t, int64(5), intSetting.Get(sv))

	require.Error(t, sv.LoadYAML([]byte("test.int: [1, 2]\n")))
	require.Error(t, sv.LoadYAML([]byte("{")))
}

func TestKeysAndLookup(t *testing.T) {
	defer leaktest.AfterTest(t)()
	require.Equal(t, []string{"test.bool", "test.int"}, Keys())
	s, desc, ok := Lookup("test.hidden")
	require.True(t, ok)
	require.Equal(t, "hidden", desc)
	require.Equal(t, "i", s.Typ())
	require.Same(t, hiddenSetting, s)
	_, _, ok = Lookup("missing")
	require.False(t, ok)
}

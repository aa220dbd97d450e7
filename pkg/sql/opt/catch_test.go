// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hkeyplan/hkeyplan/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

func catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = CatchOptimizerError(r)
		}
	}()
	f()
	return nil
}

func TestCatchOptimizerError(t *testing.T) {
	defer leaktest.AfterTest(t)()

	require.NoError(t, catch(func() {}))

	err := catch(func() { panic(errors.AssertionFailedf("bad %d", 1)) })
	require.True(t, errors.IsAssertionFailure(err))
	require.Contains(t, err.Error(), "bad 1")

	err = catch(func() {
		var s []int
		_ = s[3]
	})
	require.True(t, errors.IsAssertionFailure(err))

	plain := errors.New("plain")
	require.Same(t, plain, catch(func() { panic(plain) }))

	require.Panics(t, func() { _ = catch(func() { panic("not an error") }) })
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"testing"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/hkeyplan/hkeyplan/pkg/settings"
	"github.com/hkeyplan/hkeyplan/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

func TestMakeMessage(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()
	ctx = logtags.AddTag(ctx, "goal", nil)
	ctx = logtags.AddTag(ctx, "table", "orders")

	testCases := []struct {
		redact   bool
		format   string
		args     []interface{}
		expected string
	}{
		{false, "picked %s", []interface{}{"x"}, "[goal,table=orders] picked x"},
		{true, "picked %s", []interface{}{"x"}, "[goal,table=‹×›] picked ‹×›"},
		{true, "picked %s", []interface{}{redact.Safe("x")}, "[goal,table=‹×›] picked x"},
		{false, "", []interface{}{"a", 1}, "[goal,table=orders] a1"},
		{false, "", []interface{}{1, 2}, "[goal,table=orders] 1 2"},
	}
	for _, tc := range testCases {
		msg := makeMessage(ctx, tc.redact, tc.format, tc.args)
		require.Equal(t, tc.expected, msg)
	}

	require.Equal(t, "plain", makeMessage(context.Background(), false, "plain", nil))
}

func TestIntercept(t *testing.T) {
	defer leaktest.AfterTest(t)()
	sv := settings.NewValues()
	SetValues(sv)
	defer SetValues(nil)

	var got []string
	remove := Intercept(func(s Severity, msg string) {
		got = append(got, s.String()+" "+msg)
	})
	ctx := context.Background()
	Infof(ctx, "one %d", 1)
	RedactUnsafe.Override(sv, true)
	Warningf(ctx, "two %s", "secret")
	defer SetVModule(2)()
	VEventf(ctx, 2, "three")
	VEventf(ctx, 3, "four")
	remove()
	Errorf(ctx, "five")

	require.Equal(t, []string{"I one 1", "W two ‹×›", "I three"}, got)
}

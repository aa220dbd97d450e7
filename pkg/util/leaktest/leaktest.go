// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package leaktest provides tools to detect leaked goroutines in tests.
// To use it, call "defer leaktest.AfterTest(t)()" at the beginning of each
// test that may use goroutines.
package leaktest

import (
	"testing"

	"go.uber.org/goleak"
)

// ignored lists goroutines owned by libraries that live for the whole
// process and are not leaks of the code under test.
var ignored = []goleak.Option{
	// glog's periodic flusher.
	goleak.IgnoreTopFunction("github.com/golang/glog.(*fileSink).flushDaemon"),
	goleak.IgnoreAnyFunction("github.com/golang/glog.(*loggingT).flushDaemon"),
}

// AfterTest snapshots the currently-running goroutines and returns a
// function to be run at the end of tests to see whether any goroutines
// leaked. Failures are not reported for tests that have already failed.
func AfterTest(t testing.TB) func() {
	snapshot := goleak.IgnoreCurrent()
	return func() {
		if t.Failed() {
			return
		}
		opts := append([]goleak.Option{snapshot}, ignored...)
		if err := goleak.Find(opts...); err != nil {
			t.Errorf("leaked goroutines: %v", err)
		}
	}
}

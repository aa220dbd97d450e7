// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log implements leveled, context-tagged logging on top of glog.
package log

import (
	"context"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/hkeyplan/hkeyplan/pkg/settings"
	"github.com/hkeyplan/hkeyplan/pkg/util/syncutil"
)

// Severity identifies the sink an entry is written to.
type Severity int

// Severity levels.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "I"
	case SeverityWarning:
		return "W"
	case SeverityError:
		return "E"
	}
	return "?"
}

// RedactUnsafe controls whether unsafe values are redacted from log output.
var RedactUnsafe = settings.RegisterBoolSetting(
	"log.redact_unsafe",
	"if set, unsafe values are replaced by a redaction marker in log messages",
	false,
)

var values atomic.Pointer[settings.Values]

// SetValues installs the settings container consulted for RedactUnsafe.
func SetValues(sv *settings.Values) {
	values.Store(sv)
}

func redactUnsafe() bool {
	sv := values.Load()
	if sv == nil {
		return false
	}
	return RedactUnsafe.Get(sv)
}

var interceptors struct {
	syncutil.RWMutex
	fns []func(Severity, string)
}

// Intercept registers fn to be called with every entry that is logged, in
// addition to glog. The returned function removes the interceptor.
func Intercept(fn func(s Severity, msg string)) (remove func()) {
	interceptors.Lock()
	defer interceptors.Unlock()
	idx := len(interceptors.fns)
	interceptors.fns = append(interceptors.fns, fn)
	return func() {
		interceptors.Lock()
		defer interceptors.Unlock()
		interceptors.fns[idx] = nil
	}
}

// addStructured creates a structured log entry to be written to the
// specified facility of the logger.
func addStructured(ctx context.Context, s Severity, depth int, format string, args []interface{}) {
	if ctx == nil {
		panic("nil context")
	}
	msg := makeMessage(ctx, redactUnsafe(), format, args)
	interceptors.RLock()
	for _, fn := range interceptors.fns {
		if fn != nil {
			fn(s, msg)
		}
	}
	interceptors.RUnlock()
	switch s {
	case SeverityInfo:
		glog.InfoDepth(depth+1, msg)
	case SeverityWarning:
		glog.WarningDepth(depth+1, msg)
	default:
		glog.ErrorDepth(depth+1, msg)
	}
}

// Infof logs to the INFO log.
func Infof(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityInfo, 1, format, args)
}

// Warningf logs to the WARNING and INFO logs.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityWarning, 1, format, args)
}

// Errorf logs to the ERROR, WARNING, and INFO logs.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityError, 1, format, args)
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return bool(glog.V(glog.Level(level)))
}

var forceVerbosity atomic.Int32

// SetVModule forces V(level) to report true for every level up to and
// including the given one, independent of glog's -v flag. It returns a
// function restoring the previous value. Intended for tests and tools.
func SetVModule(level int32) (restore func()) {
	prev := forceVerbosity.Swap(level)
	return func() { forceVerbosity.Store(prev) }
}

// VDepth is like V but also honors SetVModule.
func VDepth(level int32) bool {
	return level <= forceVerbosity.Load() || V(level)
}

// VEventf logs to the INFO log if the verbosity is at least level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if VDepth(level) {
		addStructured(ctx, SeverityInfo, 1, format, args)
	}
}

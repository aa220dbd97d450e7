// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"strings"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// makeMessage creates a structured log entry. Tags attached to ctx are
// rendered as a "[k=v,...] " prefix. Unsafe arguments are redacted when
// redactUnsafe is set; otherwise the redaction markers are stripped.
func makeMessage(ctx context.Context, redactUnsafe bool, format string, args []interface{}) string {
	var buf redact.StringBuilder
	if tags := logtags.FromContext(ctx); tags != nil {
		buf.SafeRune('[')
		for i, t := range tags.Get() {
			if i > 0 {
				buf.SafeRune(',')
			}
			buf.Print(redact.SafeString(t.Key()))
			if value := t.Value(); value != nil {
				buf.SafeRune('=')
				buf.Print(value)
			}
		}
		buf.SafeString("] ")
	}
	if len(format) == 0 {
		buf.Print(redact.Sprint(args...))
	} else {
		buf.Printf(format, args...)
	}
	msg := buf.RedactableString()
	if redactUnsafe {
		return strings.TrimSpace(string(msg.Redact()))
	}
	return strings.TrimSpace(msg.StripMarkers())
}

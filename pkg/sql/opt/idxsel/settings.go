// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxsel

import "github.com/hkeyplan/hkeyplan/pkg/settings"

// GroupIndexesEnabled controls whether group indexes are candidates.
var GroupIndexesEnabled = settings.RegisterBoolSetting(
	"sql.opt.group_indexes.enabled",
	"consider group indexes when picking the index of a table",
	true,
)

// CoveringIndexesEnabled controls whether an index that supplies every
// needed column is preferred over one that needs the base table.
var CoveringIndexesEnabled = settings.RegisterBoolSetting(
	"sql.opt.covering_indexes.enabled",
	"prefer indexes that supply every column the query needs",
	true,
)

// CandidateLogVerbosity is the verbosity at which candidate decisions are
// logged.
var CandidateLogVerbosity = settings.RegisterIntSetting(
	"sql.opt.index_candidates.log_verbosity",
	"verbosity at which index candidate decisions are logged",
	2,
	settings.NonNegativeInt,
)

// endpoints.go
//
// This source file is part of the FoundationDB open source project
//
// Copyright 2021-2026 Apple Inc. and the FoundationDB project authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package api

const (
	// DataPath is the backend endpoint that returns the model attributes, the
	// time axis and the variable samples.
	DataPath = "/data"

	// OptionsPath is the backend endpoint that returns the variable option
	// metadata.
	OptionsPath = "/get_options"

	// PollPath is the backend endpoint that reports whether new data is
	// available.
	PollPath = "/poll"

	// InfoOptionsKey is a reserved key of the options response that does not
	// describe a variable.
	InfoOptionsKey = "INFO"

	// APMOptionsKey is a reserved key of the options response that holds the
	// global solver options.
	APMOptionsKey = "APM"

	// HiddenOptionKey is the option key added to every variable to track
	// whether it is hidden in the variable list.
	HiddenOptionKey = "ishidden"

	// MuchDataThreshold is the variable count above which all traces are only
	// listed in the legend by default.
	MuchDataThreshold = 5
)

// IgnoredOptionKeys are the keys of the options response that are never
// copied into the variable metadata.
var IgnoredOptionKeys = []string{InfoOptionsKey, APMOptionsKey}

// CanonicalVariableSets lists the variable sets in the order their traces
// are emitted.
var CanonicalVariableSets = []string{"variables", "parameters", "intermediates", "constants"}

// IsIgnoredOptionKey returns true if the key must not be copied into the
// variable metadata.
func IsIgnoredOptionKey(key string) bool {
	for _, ignored := range IgnoredOptionKeys {
		if ignored == key {
			return true
		}
	}

	return false
}

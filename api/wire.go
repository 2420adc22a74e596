// wire.go
//
// This source file is part of the FoundationDB open source project
//
// Copyright 2026 Apple Inc. and the FoundationDB project authors
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

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ModelData holds the model level attributes reported by the backend.
type ModelData map[string]interface{}

// VariableOptions holds the option metadata of a single variable.
type VariableOptions map[string]interface{}

// VarsData maps variable names to their option metadata.
type VarsData map[string]VariableOptions

// PollResponse is the body of the poll endpoint.
type PollResponse struct {
	// Updates is true when the backend has new data.
	Updates bool `json:"updates"`
}

// DataResponse is the body of the data endpoint.
type DataResponse struct {
	// Model contains the model level attributes.
	Model ModelData `json:"model"`

	// Time is the time axis shared by all variables.
	Time []float64 `json:"time"`

	// Vars maps the name of a variable set to its variables.
	Vars map[string]VariableSet `json:"vars"`
}

// VariableCount returns the number of variables across all sets.
func (response DataResponse) VariableCount() int {
	count := 0
	for _, set := range response.Vars {
		count += len(set)
	}

	return count
}

// SetNames returns the names of the variable sets with the canonical sets
// first and all other sets sorted by name.
func (response DataResponse) SetNames() []string {
	names := make([]string, 0, len(response.Vars))
	for _, name := range CanonicalVariableSets {
		if _, ok := response.Vars[name]; ok {
			names = append(names, name)
		}
	}

	extra := make([]string, 0, len(response.Vars))
	for name := range response.Vars {
		if !isCanonicalVariableSet(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	return append(names, extra...)
}

// Variable is a single variable of a variable set.
type Variable struct {
	// Name of the variable, used as the trace name.
	Name string `json:"name"`

	// Data holds one sample per entry of the time axis.
	Data []float64 `json:"data"`
}

// VariableSet is the ordered list of variables of one set. The backend may
// send a set either as a list or as an object keyed by variable name; the
// object form is ordered by key.
type VariableSet []Variable

// UnmarshalJSON custom implementation of UnmarshalJSON
func (set *VariableSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*set = nil
		return nil
	}

	if trimmed[0] == '[' {
		var variables []Variable
		err := json.Unmarshal(trimmed, &variables)
		if err != nil {
			return err
		}
		*set = variables
		return nil
	}

	if trimmed[0] != '{' {
		return fmt.Errorf("unsupported variable set format: %s", string(trimmed[:1]))
	}

	keyed := map[string]Variable{}
	err := json.Unmarshal(trimmed, &keyed)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(keyed))
	for key := range keyed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	variables := make([]Variable, 0, len(keys))
	for _, key := range keys {
		variable := keyed[key]
		if variable.Name == "" {
			variable.Name = key
		}
		variables = append(variables, variable)
	}
	*set = variables

	return nil
}

func isCanonicalVariableSet(name string) bool {
	for _, canonical := range CanonicalVariableSets {
		if canonical == name {
			return true
		}
	}

	return false
}

// FetchResult is the fully assembled outcome of one data fetch. It is only
// produced when both the data and the options request succeeded.
type FetchResult struct {
	// ModelData replaces the model attributes.
	ModelData ModelData

	// Traces replaces the latest trace collection.
	Traces TraceCollection

	// VarsData replaces the variable metadata.
	VarsData VarsData
}

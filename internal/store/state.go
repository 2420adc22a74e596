// state.go
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

package store

import (
	"fmt"

	"github.com/apple/foundationdb/plotsync/api"
)

// StalePolicy defines what happens to a plot trace whose name is missing from
// the latest fetch.
type StalePolicy string

const (
	// StalePolicyMark keeps the previous samples and flags the trace as stale.
	// The flag is removed once the name shows up again.
	StalePolicyMark StalePolicy = "mark"

	// StalePolicyPrune removes the trace from the plot.
	StalePolicyPrune StalePolicy = "prune"
)

// ParseStalePolicy parses the string representation of a stale policy. An
// empty string selects StalePolicyMark.
func ParseStalePolicy(policy string) (StalePolicy, error) {
	switch StalePolicy(policy) {
	case "", StalePolicyMark:
		return StalePolicyMark, nil
	case StalePolicyPrune:
		return StalePolicyPrune, nil
	default:
		return "", fmt.Errorf("unsupported stale policy %s", policy)
	}
}

// State is the complete client-side state of a dashboard session.
//
// State values are treated as immutable: every transition function returns a
// new State and leaves its input untouched.
type State struct {
	// NumPlots is the number of live plots.
	NumPlots int `json:"numPlots"`

	// PlotIDCounter is the id the next plot will get.
	PlotIDCounter int `json:"plotIdCounter"`

	// FullscreenPlot defines whether the full-screen plot is displayed.
	FullscreenPlot bool `json:"fullscreenPlot"`

	// Plots holds all live plots in creation order.
	Plots []api.Plot `json:"plots"`

	// TraceCollection is the latest known state of the backend process.
	TraceCollection api.TraceCollection `json:"plotData"`

	// ModelData holds the model attributes of the latest fetch.
	ModelData api.ModelData `json:"modelData"`

	// VarsData holds the variable metadata of the latest fetch.
	VarsData api.VarsData `json:"varsData"`

	// Errors holds the communication error state.
	Errors api.ErrorState `json:"errors"`
}

// DeepCopy returns a copy of the state that shares no data with the original.
func (state State) DeepCopy() State {
	result := state
	if state.Plots != nil {
		result.Plots = make([]api.Plot, len(state.Plots))
		for idx, plot := range state.Plots {
			result.Plots[idx] = plot.DeepCopy()
		}
	}
	result.TraceCollection = state.TraceCollection.DeepCopy()
	result.ModelData = copyModelData(state.ModelData)
	result.VarsData = copyVarsData(state.VarsData)

	return result
}

// Plot returns the plot with the provided id.
func (state State) Plot(id int) (api.Plot, bool) {
	idx := state.plotIndex(id)
	if idx < 0 {
		return api.Plot{}, false
	}

	return state.Plots[idx], true
}

func (state State) plotIndex(id int) int {
	for idx, plot := range state.Plots {
		if plot.ID == id {
			return idx
		}
	}

	return -1
}

func copyModelData(data api.ModelData) api.ModelData {
	if data == nil {
		return nil
	}

	return api.ModelData(api.Layout(data).DeepCopy())
}

func copyVarsData(data api.VarsData) api.VarsData {
	if data == nil {
		return nil
	}

	result := make(api.VarsData, len(data))
	for name, options := range data {
		result[name] = api.VariableOptions(api.Layout(options).DeepCopy())
	}

	return result
}

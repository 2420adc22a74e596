// trace.go
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

// Visibility defines how a trace is displayed when a plot is drawn.
type Visibility string

const (
	// VisibilityShown draws the trace.
	VisibilityShown Visibility = "true"

	// VisibilityLegendOnly only lists the trace in the legend until the user
	// toggles it.
	VisibilityLegendOnly Visibility = "legendonly"
)

const (
	// DefaultTraceMode is the drawing mode for every fetched trace.
	DefaultTraceMode = "lines"

	// DefaultTraceType is the chart type for every fetched trace.
	DefaultTraceType = "scatter"
)

// Trace models one named time series together with its rendering hints.
type Trace struct {
	// Name identifies the trace. Names are unique within a collection.
	Name string `json:"name"`

	// X holds the shared time axis.
	X []float64 `json:"x"`

	// Y holds the samples of the variable.
	Y []float64 `json:"y"`

	// Mode is the drawing mode, e.g. lines.
	Mode string `json:"mode"`

	// Type is the chart type, e.g. scatter.
	Type string `json:"type"`

	// Visible defines if the trace is drawn or only listed in the legend.
	Visible Visibility `json:"visible"`

	// Stale is set when the trace name was missing from the latest fetch and
	// the trace still carries the data of an older fetch.
	Stale bool `json:"stale,omitempty"`
}

// DeepCopy returns a copy of the trace that shares no slices with the
// original.
func (trace Trace) DeepCopy() Trace {
	trace.X = copyFloats(trace.X)
	trace.Y = copyFloats(trace.Y)
	return trace
}

// TraceCollection is an ordered list of traces with unique names.
type TraceCollection []Trace

// DeepCopy returns a private copy of the collection.
func (collection TraceCollection) DeepCopy() TraceCollection {
	if collection == nil {
		return nil
	}

	result := make(TraceCollection, len(collection))
	for idx, trace := range collection {
		result[idx] = trace.DeepCopy()
	}

	return result
}

// Lookup returns the trace with the provided name.
func (collection TraceCollection) Lookup(name string) (Trace, bool) {
	for _, trace := range collection {
		if trace.Name == name {
			return trace, true
		}
	}

	return Trace{}, false
}

// Index maps every trace name to its position in the collection.
func (collection TraceCollection) Index() map[string]int {
	index := make(map[string]int, len(collection))
	for idx, trace := range collection {
		index[trace.Name] = idx
	}

	return index
}

// Names returns the trace names in collection order.
func (collection TraceCollection) Names() []string {
	names := make([]string, 0, len(collection))
	for _, trace := range collection {
		names = append(names, trace.Name)
	}

	return names
}

func copyFloats(values []float64) []float64 {
	if values == nil {
		return nil
	}

	return append(make([]float64, 0, len(values)), values...)
}

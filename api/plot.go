// plot.go
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

const (
	// FullscreenPlotID is the id reserved for the hidden full-screen plot.
	// The first plot that is added always gets this id.
	FullscreenPlotID = 0

	// FullscreenHeightOffset is subtracted from the viewport height to get the
	// height of the full-screen plot.
	FullscreenHeightOffset = 150

	// LayoutHeightKey is the layout key for the plot height.
	LayoutHeightKey = "height"
)

// Layout is the opaque display configuration of a plot. It is owned by the
// rendering layer and never modified during reconciliation.
type Layout map[string]interface{}

// DeepCopy returns a copy of the layout that shares no nested maps or
// slices with the original.
func (layout Layout) DeepCopy() Layout {
	if layout == nil {
		return nil
	}

	result := make(Layout, len(layout))
	for key, value := range layout {
		result[key] = deepCopyValue(value)
	}

	return result
}

// FullscreenLayout returns the initial layout of the full-screen plot for the
// provided viewport height.
func FullscreenLayout(viewportHeight int) Layout {
	return Layout{LayoutHeightKey: viewportHeight - FullscreenHeightOffset}
}

// Plot models one chart instance.
type Plot struct {
	// ID identifies the plot. IDs are strictly increasing and never reused.
	ID int `json:"id"`

	// Data is a private copy of the trace collection.
	Data TraceCollection `json:"data"`

	// Layout is the display configuration of the plot.
	Layout Layout `json:"layout"`
}

// DeepCopy returns a copy of the plot that shares no data with the original.
func (plot Plot) DeepCopy() Plot {
	return Plot{
		ID:     plot.ID,
		Data:   plot.Data.DeepCopy(),
		Layout: plot.Layout.DeepCopy(),
	}
}

// deepCopyValue copies the JSON-like values that can appear in layouts and
// option metadata. Scalars are returned as is.
func deepCopyValue(value interface{}) interface{} {
	switch typed := value.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(typed))
		for key, child := range typed {
			result[key] = deepCopyValue(child)
		}
		return result
	case Layout:
		return typed.DeepCopy()
	case []interface{}:
		result := make([]interface{}, len(typed))
		for idx, child := range typed {
			result[idx] = deepCopyValue(child)
		}
		return result
	case []float64:
		return copyFloats(typed)
	default:
		return value
	}
}

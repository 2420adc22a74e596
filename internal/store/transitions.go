// transitions.go
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
	"errors"
	"fmt"

	"github.com/apple/foundationdb/plotsync/api"
	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/utils/ptr"
)

// ErrPlotNotFound is returned when a transition references a plot id that
// does not exist.
var ErrPlotNotFound = errors.New("plot not found")

// AddPlot appends a new plot holding a private copy of the current trace
// collection and an empty layout. It returns the id of the new plot.
func AddPlot(state State) (State, ChangeLog, int) {
	next := state.DeepCopy()
	id := next.PlotIDCounter
	next.Plots = append(next.Plots, api.Plot{
		ID:     id,
		Data:   next.TraceCollection.DeepCopy(),
		Layout: api.Layout{},
	})
	next.PlotIDCounter++
	next.NumPlots = len(next.Plots)

	return next, ChangeLog{{Type: PlotAdded, PlotID: ptr.To(id)}}, id
}

// RemovePlot removes the plot with the provided id. Removing an unknown id is
// a no-op.
func RemovePlot(state State, id int) (State, ChangeLog) {
	if state.plotIndex(id) < 0 {
		return state, nil
	}

	next := state.DeepCopy()
	plots := next.Plots[:0]
	for _, plot := range next.Plots {
		if plot.ID != id {
			plots = append(plots, plot)
		}
	}
	next.Plots = plots
	next.NumPlots = len(next.Plots)

	return next, ChangeLog{{Type: PlotRemoved, PlotID: ptr.To(id)}}
}

// UpdateLayout replaces the layout of the plot with the provided id. If no
// such plot exists the state is returned unchanged together with
// ErrPlotNotFound.
func UpdateLayout(state State, id int, layout api.Layout) (State, ChangeLog, error) {
	idx := state.plotIndex(id)
	if idx < 0 {
		return state, nil, fmt.Errorf("could not update layout of plot %d: %w", id, ErrPlotNotFound)
	}

	if layout == nil {
		layout = api.Layout{}
	}

	if equality.Semantic.DeepEqual(state.Plots[idx].Layout, layout) {
		return state, nil, nil
	}

	next := state.DeepCopy()
	next.Plots[idx].Layout = layout.DeepCopy()

	return next, ChangeLog{{Type: LayoutUpdated, PlotID: ptr.To(id)}}, nil
}

// ShowFullscreen sets the display flag of the full-screen plot.
func ShowFullscreen(state State, show bool) (State, ChangeLog) {
	if state.FullscreenPlot == show {
		return state, nil
	}

	next := state.DeepCopy()
	next.FullscreenPlot = show

	return next, ChangeLog{{Type: FullscreenToggled, PlotID: ptr.To(api.FullscreenPlotID)}}
}

// CommitFetch replaces the model data, the variable metadata and the trace
// collection with the fetch result and reconciles the new traces into every
// plot.
func CommitFetch(state State, result api.FetchResult, policy StalePolicy) (State, ChangeLog) {
	next := state.DeepCopy()
	next.ModelData = copyModelData(result.ModelData)
	next.VarsData = copyVarsData(result.VarsData)
	next.TraceCollection = result.Traces.DeepCopy()

	reconciled, changes := Reconcile(next, next.TraceCollection, policy)

	return reconciled, append(ChangeLog{{Type: TraceCollectionReplaced}}, changes...)
}

// RaiseCommunicationError records a failure. The error descriptor is always
// replaced. The communication error latch only transitions from false to true
// here, and the error dialog is opened on that transition unless it is
// already open. Later failures of the same outage never reopen the dialog.
func RaiseCommunicationError(state State, httpError api.HTTPError) (State, ChangeLog) {
	next := state.DeepCopy()
	var changes ChangeLog

	if next.Errors.HTTPError != httpError {
		next.Errors.HTTPError = httpError
		changes = append(changes, Change{Type: HTTPErrorUpdated})
	}

	if !next.Errors.CommunicationError {
		if !next.Errors.ShowErrorModal {
			next.Errors.ShowErrorModal = true
			changes = append(changes, Change{Type: ErrorModalOpened})
		}
		next.Errors.CommunicationError = true
		changes = append(changes, Change{Type: CommunicationErrorRaised})
	}

	return next, changes
}

// ClearCommunicationError resets the communication error latch. The error
// dialog and the last error descriptor are left for the user to read.
func ClearCommunicationError(state State) (State, ChangeLog) {
	if !state.Errors.CommunicationError {
		return state, nil
	}

	next := state.DeepCopy()
	next.Errors.CommunicationError = false

	return next, ChangeLog{{Type: CommunicationErrorCleared}}
}

// DismissErrorModal closes the error dialog.
func DismissErrorModal(state State) (State, ChangeLog) {
	if !state.Errors.ShowErrorModal {
		return state, nil
	}

	next := state.DeepCopy()
	next.Errors.ShowErrorModal = false

	return next, ChangeLog{{Type: ErrorModalDismissed}}
}

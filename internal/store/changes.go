// changes.go
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

// ChangeType describes a single effect of a state transition.
type ChangeType string

const (
	// PlotAdded is recorded when a new plot was appended.
	PlotAdded ChangeType = "PlotAdded"

	// PlotRemoved is recorded when a plot was removed.
	PlotRemoved ChangeType = "PlotRemoved"

	// LayoutUpdated is recorded when the layout of a plot was replaced.
	LayoutUpdated ChangeType = "LayoutUpdated"

	// FullscreenToggled is recorded when the full-screen flag changed.
	FullscreenToggled ChangeType = "FullscreenToggled"

	// TraceCollectionReplaced is recorded when a fetch result was committed.
	TraceCollectionReplaced ChangeType = "TraceCollectionReplaced"

	// TraceUpdated is recorded when the samples of a plot trace changed.
	TraceUpdated ChangeType = "TraceUpdated"

	// TraceMarkedStale is recorded when a plot trace was missing from the
	// latest fetch and got flagged.
	TraceMarkedStale ChangeType = "TraceMarkedStale"

	// TracePruned is recorded when a plot trace was missing from the latest
	// fetch and got removed.
	TracePruned ChangeType = "TracePruned"

	// CommunicationErrorRaised is recorded on the first failure of an outage.
	CommunicationErrorRaised ChangeType = "CommunicationErrorRaised"

	// CommunicationErrorCleared is recorded on the first success after an
	// outage.
	CommunicationErrorCleared ChangeType = "CommunicationErrorCleared"

	// HTTPErrorUpdated is recorded whenever the error descriptor changed.
	HTTPErrorUpdated ChangeType = "HTTPErrorUpdated"

	// ErrorModalOpened is recorded when the error dialog got opened.
	ErrorModalOpened ChangeType = "ErrorModalOpened"

	// ErrorModalDismissed is recorded when the user closed the error dialog.
	ErrorModalDismissed ChangeType = "ErrorModalDismissed"
)

// Change is a single entry of a change log.
type Change struct {
	// Type of the change.
	Type ChangeType

	// PlotID is the affected plot, nil if the change is not plot specific.
	PlotID *int

	// Trace is the affected trace name, empty if the change is not trace
	// specific.
	Trace string
}

// ChangeLog lists the effects of a transition in the order they happened.
type ChangeLog []Change

// Count returns the number of changes with the provided type.
func (changes ChangeLog) Count(changeType ChangeType) int {
	count := 0
	for _, change := range changes {
		if change.Type == changeType {
			count++
		}
	}

	return count
}

// Has returns true if the log contains at least one change with the provided
// type.
func (changes ChangeLog) Has(changeType ChangeType) bool {
	return changes.Count(changeType) > 0
}

// keysAndValues returns the logging key/value pairs for the change.
func (change Change) keysAndValues() []interface{} {
	values := []interface{}{"change", string(change.Type)}
	if change.PlotID != nil {
		values = append(values, "plotID", *change.PlotID)
	}
	if change.Trace != "" {
		values = append(values, "trace", change.Trace)
	}

	return values
}

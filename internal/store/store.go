// store.go
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
	"sync"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/go-logr/logr"
)

// Observer is called after every transition that produced changes. The state
// must not be modified by the observer.
type Observer func(state State, changes ChangeLog)

// Store is the only mutation surface of the session state. It serializes all
// transitions, logs their change logs and notifies the observers.
type Store struct {
	// mutex synchronizes the transitions from the poll loop, the state API
	// and the layout watcher.
	mutex sync.Mutex

	// state is the current state. It is replaced on every transition.
	state State

	// stalePolicy is used during reconciliation.
	stalePolicy StalePolicy

	// observers are notified after each transition with changes.
	observers []Observer

	// logger is the logger for the change logs.
	logger logr.Logger
}

// New creates an empty store.
func New(logger logr.Logger, stalePolicy StalePolicy) *Store {
	return &Store{
		stalePolicy: stalePolicy,
		logger:      logger.WithName("store"),
	}
}

// Subscribe registers an observer. Observers are called in registration
// order while the store is locked, so they must not call back into the store.
func (store *Store) Subscribe(observer Observer) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.observers = append(store.observers, observer)
}

// Snapshot returns a private copy of the current state.
func (store *Store) Snapshot() State {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	return store.state.DeepCopy()
}

// apply runs a transition and commits its result.
func (store *Store) apply(transition func(State) (State, ChangeLog)) ChangeLog {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	next, changes := transition(store.state)
	if len(changes) == 0 {
		return nil
	}

	store.state = next
	for _, change := range changes {
		store.logger.V(1).Info("Applied state change", change.keysAndValues()...)
	}

	for _, observer := range store.observers {
		observer(store.state, changes)
	}

	return changes
}

// AddPlot appends a new plot and returns its id.
func (store *Store) AddPlot() int {
	var id int
	store.apply(func(state State) (State, ChangeLog) {
		var changes ChangeLog
		state, changes, id = AddPlot(state)
		return state, changes
	})
	store.logger.Info("Added plot", "plotID", id)

	return id
}

// RemovePlot removes the plot with the provided id. It returns false if no
// such plot exists.
func (store *Store) RemovePlot(id int) bool {
	changes := store.apply(func(state State) (State, ChangeLog) {
		return RemovePlot(state, id)
	})

	if !changes.Has(PlotRemoved) {
		store.logger.Info("Ignoring removal of unknown plot", "plotID", id)
		return false
	}

	store.logger.Info("Removed plot", "plotID", id)
	return true
}

// UpdateLayout replaces the layout of a plot. It returns an error wrapping
// ErrPlotNotFound if no such plot exists.
func (store *Store) UpdateLayout(id int, layout api.Layout) error {
	var err error
	store.apply(func(state State) (State, ChangeLog) {
		var changes ChangeLog
		state, changes, err = UpdateLayout(state, id, layout)
		return state, changes
	})

	if err != nil {
		store.logger.Error(err, "Error updating plot layout", "plotID", id)
	}

	return err
}

// ShowFullscreen sets the display flag of the full-screen plot.
func (store *Store) ShowFullscreen(show bool) {
	store.apply(func(state State) (State, ChangeLog) {
		return ShowFullscreen(state, show)
	})
}

// CommitFetch commits a fetch result and reconciles it into every plot.
func (store *Store) CommitFetch(result api.FetchResult) ChangeLog {
	return store.apply(func(state State) (State, ChangeLog) {
		return CommitFetch(state, result, store.stalePolicy)
	})
}

// RaiseCommunicationError records a communication failure.
func (store *Store) RaiseCommunicationError(httpError api.HTTPError) ChangeLog {
	return store.apply(func(state State) (State, ChangeLog) {
		return RaiseCommunicationError(state, httpError)
	})
}

// ClearCommunicationError resets the communication error latch.
func (store *Store) ClearCommunicationError() ChangeLog {
	return store.apply(ClearCommunicationError)
}

// DismissErrorModal closes the error dialog.
func (store *Store) DismissErrorModal() {
	store.apply(DismissErrorModal)
}

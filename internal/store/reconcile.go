// reconcile.go
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
	"github.com/apple/foundationdb/plotsync/api"
	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/utils/ptr"
)

// Reconcile merges a freshly fetched trace collection into the data of every
// plot. Traces are matched by name and only their samples are replaced, so
// the plot layout and the visible, mode and type fields set by the user are
// preserved. Traces that are missing from the collection are handled
// according to the stale policy. Traces of the collection that are not part
// of a plot are not added to it.
func Reconcile(state State, collection api.TraceCollection, policy StalePolicy) (State, ChangeLog) {
	next := state.DeepCopy()
	index := collection.Index()
	var changes ChangeLog

	for plotIdx := range next.Plots {
		plot := &next.Plots[plotIdx]
		kept := plot.Data[:0]

		for _, trace := range plot.Data {
			sourceIdx, ok := index[trace.Name]
			if !ok {
				if policy == StalePolicyPrune {
					changes = append(changes, Change{Type: TracePruned, PlotID: ptr.To(plot.ID), Trace: trace.Name})
					continue
				}

				if !trace.Stale {
					trace.Stale = true
					changes = append(changes, Change{Type: TraceMarkedStale, PlotID: ptr.To(plot.ID), Trace: trace.Name})
				}
				kept = append(kept, trace)
				continue
			}

			source := collection[sourceIdx].DeepCopy()
			if trace.Stale || !equality.Semantic.DeepEqual(trace.X, source.X) || !equality.Semantic.DeepEqual(trace.Y, source.Y) {
				changes = append(changes, Change{Type: TraceUpdated, PlotID: ptr.To(plot.ID), Trace: trace.Name})
			}

			trace.X = source.X
			trace.Y = source.Y
			trace.Stale = false
			kept = append(kept, trace)
		}

		plot.Data = kept
	}

	return next, changes
}

// StaleTraceCount returns the number of stale traces across all plots.
func (state State) StaleTraceCount() int {
	count := 0
	for _, plot := range state.Plots {
		for _, trace := range plot.Data {
			if trace.Stale {
				count++
			}
		}
	}

	return count
}

// transitions_test.go
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
	"math/rand"

	"github.com/apple/foundationdb/plotsync/api"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sampleCollection() api.TraceCollection {
	return api.TraceCollection{
		{Name: "level", X: []float64{0, 1}, Y: []float64{1, 2}, Mode: api.DefaultTraceMode, Type: api.DefaultTraceType, Visible: api.VisibilityShown},
		{Name: "flow", X: []float64{0, 1}, Y: []float64{3, 4}, Mode: api.DefaultTraceMode, Type: api.DefaultTraceType, Visible: api.VisibilityShown},
	}
}

var _ = Describe("Testing state transitions", func() {
	var state State

	BeforeEach(func() {
		state = State{TraceCollection: sampleCollection()}
	})

	When("adding plots", func() {
		var changes ChangeLog
		var firstID, secondID int

		BeforeEach(func() {
			state, changes, firstID = AddPlot(state)
			Expect(changes).To(HaveLen(1))
			state, changes, secondID = AddPlot(state)
		})

		It("should reserve id 0 for the first plot", func() {
			Expect(firstID).To(Equal(api.FullscreenPlotID))
			Expect(secondID).To(Equal(1))
			Expect(state.NumPlots).To(Equal(2))
			Expect(state.PlotIDCounter).To(Equal(2))
			Expect(changes.Has(PlotAdded)).To(BeTrue())
		})

		It("should give every plot a private copy of the traces and an empty layout", func() {
			plot, ok := state.Plot(secondID)
			Expect(ok).To(BeTrue())
			Expect(plot.Data).To(Equal(state.TraceCollection))
			Expect(plot.Layout).To(BeEmpty())
			Expect(plot.Layout).NotTo(BeNil())

			plot.Data[0].Y[0] = 42
			Expect(state.TraceCollection[0].Y[0]).To(BeNumerically("==", 1))
		})

		When("removing the first plot", func() {
			var previous State

			BeforeEach(func() {
				previous = state
				state, changes = RemovePlot(state, firstID)
			})

			It("should remove the plot and decrement the counter", func() {
				Expect(changes.Has(PlotRemoved)).To(BeTrue())
				Expect(state.NumPlots).To(Equal(1))
				_, ok := state.Plot(firstID)
				Expect(ok).To(BeFalse())
			})

			It("should not modify the previous state", func() {
				Expect(previous.NumPlots).To(Equal(2))
				Expect(previous.Plots).To(HaveLen(2))
			})

			It("should never reuse the id", func() {
				var id int
				state, _, id = AddPlot(state)
				Expect(id).To(Equal(2))
			})
		})

		When("removing an unknown plot", func() {
			BeforeEach(func() {
				state, changes = RemovePlot(state, 17)
			})

			It("should be a no-op", func() {
				Expect(changes).To(BeEmpty())
				Expect(state.NumPlots).To(Equal(2))
			})
		})
	})

	When("running random sequences of adds and removes", func() {
		It("should keep the counter in sync and never reuse ids", func() {
			random := rand.New(rand.NewSource(4711))
			issued := map[int]bool{}
			lastID := -1

			for i := 0; i < 500; i++ {
				if random.Intn(3) == 0 && len(state.Plots) > 0 {
					victim := state.Plots[random.Intn(len(state.Plots))].ID
					state, _ = RemovePlot(state, victim)
				} else if random.Intn(10) == 0 {
					state, _ = RemovePlot(state, lastID+100)
				} else {
					var id int
					state, _, id = AddPlot(state)
					Expect(issued).NotTo(HaveKey(id))
					Expect(id).To(BeNumerically(">", lastID))
					issued[id] = true
					lastID = id
				}

				Expect(state.NumPlots).To(Equal(len(state.Plots)))
				Expect(state.NumPlots).To(BeNumerically(">=", 0))
			}
		})
	})

	When("updating a layout", func() {
		BeforeEach(func() {
			state, _, _ = AddPlot(state)
		})

		It("should replace the layout of the plot", func() {
			next, changes, err := UpdateLayout(state, 0, api.Layout{"height": 750})
			Expect(err).NotTo(HaveOccurred())
			Expect(changes.Has(LayoutUpdated)).To(BeTrue())
			plot, _ := next.Plot(0)
			Expect(plot.Layout).To(HaveKeyWithValue("height", 750))

			previous, _ := state.Plot(0)
			Expect(previous.Layout).To(BeEmpty())
		})

		It("should not record a change for an identical layout", func() {
			next, changes, err := UpdateLayout(state, 0, api.Layout{})
			Expect(err).NotTo(HaveOccurred())
			Expect(changes).To(BeEmpty())
			Expect(next).To(Equal(state))
		})

		It("should report an unknown plot", func() {
			next, changes, err := UpdateLayout(state, 5, api.Layout{"height": 1})
			Expect(err).To(MatchError(ErrPlotNotFound))
			Expect(changes).To(BeEmpty())
			Expect(next).To(Equal(state))
		})
	})

	DescribeTable("when toggling the full-screen plot", func(initial bool, show bool, expectChange bool) {
		state.FullscreenPlot = initial
		next, changes := ShowFullscreen(state, show)
		Expect(next.FullscreenPlot).To(Equal(show))
		Expect(changes.Has(FullscreenToggled)).To(Equal(expectChange))
	},
		Entry("showing a hidden plot", false, true, true),
		Entry("hiding a shown plot", true, false, true),
		Entry("showing a shown plot", true, true, false),
	)

	When("a run of failures happens", func() {
		var modalOpened, raised int

		BeforeEach(func() {
			modalOpened = 0
			raised = 0
			for i := 0; i < 5; i++ {
				var changes ChangeLog
				state, changes = RaiseCommunicationError(state, api.HTTPError{Header: "header", Body: string(rune('a' + i))})
				modalOpened += changes.Count(ErrorModalOpened)
				raised += changes.Count(CommunicationErrorRaised)
				Expect(state.Errors.CommunicationError).To(BeTrue())
			}
		})

		It("should open the modal and raise the latch exactly once", func() {
			Expect(modalOpened).To(Equal(1))
			Expect(raised).To(Equal(1))
			Expect(state.Errors.ShowErrorModal).To(BeTrue())
		})

		It("should keep the latest error descriptor", func() {
			Expect(state.Errors.HTTPError.Body).To(Equal("e"))
		})

		When("the communication recovers", func() {
			var changes ChangeLog

			BeforeEach(func() {
				state, changes = ClearCommunicationError(state)
			})

			It("should reset the latch but keep the modal for the user", func() {
				Expect(changes.Has(CommunicationErrorCleared)).To(BeTrue())
				Expect(state.Errors.CommunicationError).To(BeFalse())
				Expect(state.Errors.ShowErrorModal).To(BeTrue())
			})

			It("should not reopen the modal on the next outage while it is still open", func() {
				state, changes = RaiseCommunicationError(state, api.HTTPError{Body: "again"})
				Expect(changes.Has(CommunicationErrorRaised)).To(BeTrue())
				Expect(changes.Has(ErrorModalOpened)).To(BeFalse())
			})

			It("should reopen the modal on the next outage after it was dismissed", func() {
				state, changes = DismissErrorModal(state)
				Expect(changes.Has(ErrorModalDismissed)).To(BeTrue())
				state, changes = RaiseCommunicationError(state, api.HTTPError{Body: "again"})
				Expect(changes.Has(ErrorModalOpened)).To(BeTrue())
				Expect(state.Errors.ShowErrorModal).To(BeTrue())
			})
		})
	})

	It("should not record a change when clearing without an error", func() {
		_, changes := ClearCommunicationError(state)
		Expect(changes).To(BeEmpty())
		_, changes = DismissErrorModal(state)
		Expect(changes).To(BeEmpty())
	})

	DescribeTable("when parsing a stale policy", func(raw string, expected StalePolicy, expectError bool) {
		policy, err := ParseStalePolicy(raw)
		if expectError {
			Expect(err).To(HaveOccurred())
			return
		}
		Expect(err).NotTo(HaveOccurred())
		Expect(policy).To(Equal(expected))
	},
		Entry("empty", "", StalePolicyMark, false),
		Entry("mark", "mark", StalePolicyMark, false),
		Entry("prune", "prune", StalePolicyPrune, false),
		Entry("unknown", "keep", StalePolicy(""), true),
	)
})

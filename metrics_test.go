// metrics_test.go
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


package main

import (
	"errors"
	"time"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/apple/foundationdb/plotsync/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"k8s.io/utils/pointer"
)

// findMetric returns the metric family of the session metric with the
// provided name.
func findMetric(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, family := range families {
		if pointer.StringDeref(family.Name, "") == prometheusNamespace+"_"+name {
			return family
		}
	}

	return nil
}

var _ = Describe("Testing session metrics", func() {
	var registry *prometheus.Registry
	var sessionMetrics *metrics

	BeforeEach(func() {
		registry = prometheus.NewRegistry()
		sessionMetrics = registerMetrics(registry)
	})

	It("shouldn't throw any error", func() {
		Expect(sessionMetrics).NotTo(BeNil())
	})

	When("no metrics are added", func() {
		It("only the metrics without labels should be setup", func() {
			metrics, err := registry.Gather()
			Expect(err).NotTo(HaveOccurred())
			Expect(metrics).To(HaveLen(7))
		})
	})

	When("poll cycles are registered", func() {
		BeforeEach(func() {
			sessionMetrics.registerPoll(pollOutcomeNoUpdate)
			sessionMetrics.registerPoll(pollOutcomeNoUpdate)
			sessionMetrics.registerPoll(pollOutcomeFailed)
		})

		It("should count the cycles by outcome", func() {
			metrics, err := registry.Gather()
			Expect(err).NotTo(HaveOccurred())
			Expect(metrics).To(HaveLen(8))

			pollCount := findMetric(metrics, pollCountMetricName)
			Expect(pollCount).NotTo(BeNil())
			Expect(pollCount.Metric).To(HaveLen(2))
			for _, metric := range pollCount.Metric {
				Expect(metric.Label).To(HaveLen(1))
				Expect(*metric.Label[0].Name).To(Equal(outcomeLabel))
				expected := 1
				if *metric.Label[0].Value == string(pollOutcomeNoUpdate) {
					expected = 2
				}
				Expect(*metric.Counter.Value).To(BeNumerically("==", expected))
			}
		})
	})

	When("fetches are registered", func() {
		BeforeEach(func() {
			sessionMetrics.registerFetch(100*time.Millisecond, nil)
			sessionMetrics.registerFetch(200*time.Millisecond, errors.New("boom"))
		})

		It("should update the fetch metrics", func() {
			metrics, err := registry.Gather()
			Expect(err).NotTo(HaveOccurred())
			Expect(metrics).To(HaveLen(8))

			fetchCount := findMetric(metrics, fetchCountMetricName)
			Expect(fetchCount).NotTo(BeNil())
			Expect(fetchCount.Metric).To(HaveLen(2))
			for _, metric := range fetchCount.Metric {
				Expect(*metric.Label[0].Name).To(Equal(resultLabel))
				Expect(*metric.Counter.Value).To(BeNumerically("==", 1))
			}

			fetchDuration := findMetric(metrics, fetchDurationMetricName)
			Expect(fetchDuration).NotTo(BeNil())
			Expect(*fetchDuration.Metric[0].Histogram.SampleCount).To(BeNumerically("==", 2))

			lastFetch := findMetric(metrics, lastSuccessfulFetchTimestampMetricName)
			Expect(lastFetch).NotTo(BeNil())
			Expect(*lastFetch.Metric[0].Gauge.Value).To(BeNumerically(">", 0))
		})
	})

	When("the store changes", func() {
		var sessionStore *store.Store

		BeforeEach(func() {
			sessionStore = store.New(GinkgoLogr, store.StalePolicyMark)
			sessionStore.Subscribe(sessionMetrics.observeStore)
			sessionStore.CommitFetch(api.FetchResult{Traces: api.TraceCollection{{Name: "flow"}, {Name: "level"}}})
			sessionStore.AddPlot()
			sessionStore.AddPlot()
			sessionStore.CommitFetch(api.FetchResult{Traces: api.TraceCollection{{Name: "flow"}}})
			sessionStore.RaiseCommunicationError(api.HTTPError{Header: "first"})
			sessionStore.RaiseCommunicationError(api.HTTPError{Header: "second"})
		})

		It("should keep the state gauges in sync", func() {
			metrics, err := registry.Gather()
			Expect(err).NotTo(HaveOccurred())

			expected := map[string]float64{
				plotCountMetricName:          2,
				traceCountMetricName:         1,
				staleTraceCountMetricName:    2,
				communicationErrorMetricName: 1,
			}
			for name, value := range expected {
				metric := findMetric(metrics, name)
				Expect(metric).NotTo(BeNil(), name)
				Expect(*metric.Metric[0].Gauge.Value).To(BeNumerically("==", value), name)
			}

			modalCount := findMetric(metrics, errorModalOpenCountMetricName)
			Expect(modalCount).NotTo(BeNil())
			Expect(*modalCount.Metric[0].Counter.Value).To(BeNumerically("==", 1))
		})

		When("communication is restored", func() {
			BeforeEach(func() {
				sessionStore.ClearCommunicationError()
			})

			It("should reset the communication error gauge", func() {
				metrics, err := registry.Gather()
				Expect(err).NotTo(HaveOccurred())
				metric := findMetric(metrics, communicationErrorMetricName)
				Expect(metric).NotTo(BeNil())
				Expect(*metric.Metric[0].Gauge.Value).To(BeNumerically("==", 0))
			})
		})
	})
})

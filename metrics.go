// metrics.go
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
	"time"

	"github.com/apple/foundationdb/plotsync/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// outcomeLabel represents the outcome label for the prometheus metrics.
	outcomeLabel = "outcome"
	// resultLabel represents the result label for the prometheus metrics.
	resultLabel = "result"
	// prometheusNamespace is the prometheus namespace for the metrics
	prometheusNamespace = "plotsync"
	// pollCountMetricName represents the name of the poll count metric.
	pollCountMetricName = "poll_count"
	// fetchCountMetricName represents the name of the fetch count metric.
	fetchCountMetricName = "fetch_count"
	// fetchDurationMetricName represents the fetch_duration_seconds metric.
	fetchDurationMetricName = "fetch_duration_seconds"
	// lastSuccessfulFetchTimestampMetricName represents the last_successful_fetch_timestamp metric.
	lastSuccessfulFetchTimestampMetricName = "last_successful_fetch_timestamp"
	// communicationErrorMetricName represents the communication_error metric.
	communicationErrorMetricName = "communication_error"
	// errorModalOpenCountMetricName represents the error_modal_open_count metric.
	errorModalOpenCountMetricName = "error_modal_open_count"
	// traceCountMetricName represents the trace_count metric.
	traceCountMetricName = "trace_count"
	// plotCountMetricName represents the plot_count metric.
	plotCountMetricName = "plot_count"
	// staleTraceCountMetricName represents the stale_trace_count metric.
	staleTraceCountMetricName = "stale_trace_count"

	// fetchResultSuccess is the result label value for successful fetches.
	fetchResultSuccess = "success"
	// fetchResultFailure is the result label value for failed fetches.
	fetchResultFailure = "failure"
)

// metrics represents the custom prometheus metrics for the dashboard session.
type metrics struct {
	// pollCount represents the total number of poll cycles by outcome.
	pollCount *prometheus.CounterVec
	// fetchCount represents the total number of data fetches by result.
	fetchCount *prometheus.CounterVec
	// fetchDuration tracks how long the joined data and options requests take.
	fetchDuration prometheus.Histogram
	// lastSuccessfulFetchTimestamp provides a unix timestamp of the last committed fetch.
	lastSuccessfulFetchTimestamp prometheus.Gauge
	// communicationError is 1 while the communication error latch is set.
	communicationError prometheus.Gauge
	// errorModalOpenCount represents the number of times the error dialog was opened.
	errorModalOpenCount prometheus.Counter
	// traceCount represents the number of traces in the latest trace collection.
	traceCount prometheus.Gauge
	// plotCount represents the number of live plots.
	plotCount prometheus.Gauge
	// staleTraceCount represents the number of plot traces missing from the latest fetch.
	staleTraceCount prometheus.Gauge
}

// registerPoll will update the poll metrics with the outcome of a poll cycle.
func (metrics *metrics) registerPoll(outcome pollOutcome) {
	metrics.pollCount.With(prometheus.Labels{outcomeLabel: string(outcome)}).Inc()
}

// registerFetch will update the fetch metrics after a fetch finished.
func (metrics *metrics) registerFetch(duration time.Duration, err error) {
	metrics.fetchDuration.Observe(duration.Seconds())
	if err != nil {
		metrics.fetchCount.With(prometheus.Labels{resultLabel: fetchResultFailure}).Inc()
		return
	}

	metrics.fetchCount.With(prometheus.Labels{resultLabel: fetchResultSuccess}).Inc()
	metrics.lastSuccessfulFetchTimestamp.SetToCurrentTime()
}

// observeStore keeps the state gauges in sync with the store. It is
// registered as a store observer and therefore runs while the store is locked.
func (metrics *metrics) observeStore(state store.State, changes store.ChangeLog) {
	metrics.plotCount.Set(float64(state.NumPlots))
	metrics.traceCount.Set(float64(len(state.TraceCollection)))
	metrics.staleTraceCount.Set(float64(state.StaleTraceCount()))

	if state.Errors.CommunicationError {
		metrics.communicationError.Set(1.0)
	} else {
		metrics.communicationError.Set(0.0)
	}

	metrics.errorModalOpenCount.Add(float64(changes.Count(store.ErrorModalOpened)))
}

// registerMetrics will register the session metrics and returns a metrics struct to update the current metrics.
func registerMetrics(reg prometheus.Registerer) *metrics {
	sessionMetrics := &metrics{
		pollCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prometheusNamespace,
				Name:      pollCountMetricName,
				Help:      "Number of poll cycles by outcome.",
			}, []string{outcomeLabel}),
		fetchCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prometheusNamespace,
				Name:      fetchCountMetricName,
				Help:      "Number of data fetches by result.",
			}, []string{resultLabel}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: prometheusNamespace,
			Name:      fetchDurationMetricName,
			Help:      "Duration of the joined data and options requests.",
			Buckets:   prometheus.DefBuckets,
		}),
		lastSuccessfulFetchTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: prometheusNamespace,
			Name:      lastSuccessfulFetchTimestampMetricName,
			Help:      "Timestamp of the last committed fetch.",
		}),
		communicationError: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: prometheusNamespace,
			Name:      communicationErrorMetricName,
			Help:      "Set to 1 while communication with the backend is failing.",
		}),
		errorModalOpenCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prometheusNamespace,
			Name:      errorModalOpenCountMetricName,
			Help:      "Number of times the error dialog was opened.",
		}),
		traceCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: prometheusNamespace,
			Name:      traceCountMetricName,
			Help:      "Number of traces in the latest fetch.",
		}),
		plotCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: prometheusNamespace,
			Name:      plotCountMetricName,
			Help:      "Number of live plots.",
		}),
		staleTraceCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: prometheusNamespace,
			Name:      staleTraceCountMetricName,
			Help:      "Number of plot traces that were missing from the latest fetch.",
		}),
	}

	reg.MustRegister(sessionMetrics.pollCount)
	reg.MustRegister(sessionMetrics.fetchCount)
	reg.MustRegister(sessionMetrics.fetchDuration)
	reg.MustRegister(sessionMetrics.lastSuccessfulFetchTimestamp)
	reg.MustRegister(sessionMetrics.communicationError)
	reg.MustRegister(sessionMetrics.errorModalOpenCount)
	reg.MustRegister(sessionMetrics.traceCount)
	reg.MustRegister(sessionMetrics.plotCount)
	reg.MustRegister(sessionMetrics.staleTraceCount)

	return sessionMetrics
}

// poller.go
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


package main

import (
	"context"
	"time"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/apple/foundationdb/plotsync/internal/store"
	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"k8s.io/utils/clock"
)

// defaultPollInterval is the delay between the end of a poll cycle and the
// start of the next one.
const defaultPollInterval = 1 * time.Second

// pollOutcome is the result of a single poll cycle.
type pollOutcome string

const (
	// pollOutcomeUpdated means the backend had new data and it was committed.
	pollOutcomeUpdated pollOutcome = "update_available"
	// pollOutcomeNoUpdate means the backend had no new data.
	pollOutcomeNoUpdate pollOutcome = "no_update"
	// pollOutcomeFailed means the poll or the following fetch failed.
	pollOutcomeFailed pollOutcome = "failed"
	// pollOutcomeCancelled means the cycle was interrupted by shutdown.
	pollOutcomeCancelled pollOutcome = "cancelled"
)

// pollSource answers whether the backend has new data.
type pollSource interface {
	Poll(ctx context.Context) (api.PollResponse, error)
}

// pollLoop periodically asks the backend for updates and refreshes the store
// when there are any. Cycles are strictly sequential.
type pollLoop struct {
	// source is the backend.
	source pollSource

	// fetcher retrieves new data after an update was announced.
	fetcher *dataFetcher

	// reporter receives every failure.
	reporter *errorReporter

	// store receives the fetch results.
	store *store.Store

	// clock is used for the delay between cycles.
	clock clock.Clock

	// interval is the delay between the end of a cycle and the start of the
	// next one.
	interval time.Duration

	// metrics represents the prometheus session metrics.
	metrics *metrics

	// logger is the logger for this loop.
	logger logr.Logger
}

// runOnce runs a single poll cycle.
func (loop *pollLoop) runOnce(ctx context.Context) pollOutcome {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "poll")
	defer span.End()

	outcome := loop.cycle(ctx)
	span.SetAttributes(attribute.String(outcomeLabel, string(outcome)))
	if outcome == pollOutcomeFailed {
		span.SetStatus(codes.Error, "poll cycle failed")
	}

	if outcome != pollOutcomeCancelled {
		loop.metrics.registerPoll(outcome)
	}

	return outcome
}

func (loop *pollLoop) cycle(ctx context.Context) pollOutcome {
	response, err := loop.source.Poll(ctx)
	if err != nil {
		return loop.fail(ctx, err)
	}

	if !response.Updates {
		loop.reporter.clear()
		return pollOutcomeNoUpdate
	}

	loop.logger.Info("Backend reported updates, fetching data")
	err = loop.refresh(ctx)
	if err != nil {
		return loop.fail(ctx, err)
	}

	loop.reporter.clear()
	return pollOutcomeUpdated
}

// fail routes a failure to the reporter unless the loop is shutting down.
func (loop *pollLoop) fail(ctx context.Context, err error) pollOutcome {
	if ctx.Err() != nil {
		return pollOutcomeCancelled
	}

	loop.reporter.report(err)
	return pollOutcomeFailed
}

// refresh fetches the latest data and commits it into the store.
func (loop *pollLoop) refresh(ctx context.Context) error {
	start := loop.clock.Now()
	result, err := loop.fetcher.fetch(ctx)
	loop.metrics.registerFetch(loop.clock.Since(start), err)
	if err != nil {
		return err
	}

	changes := loop.store.CommitFetch(result)
	loop.logger.Info("Committed new data", "traces", len(result.Traces), "updatedTraces", changes.Count(store.TraceUpdated), "staleTraces", changes.Count(store.TraceMarkedStale), "prunedTraces", changes.Count(store.TracePruned))

	return nil
}

// wait blocks for the poll interval. It returns false if the context was
// cancelled first.
func (loop *pollLoop) wait(ctx context.Context) bool {
	timer := loop.clock.NewTimer(loop.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C():
		return true
	}
}

// run runs poll cycles until the context is cancelled. The next cycle is only
// scheduled after the previous one was fully processed.
func (loop *pollLoop) run(ctx context.Context) {
	loop.logger.Info("Starting poll loop", "interval", loop.interval.String())
	for {
		loop.runOnce(ctx)
		if !loop.wait(ctx) {
			loop.logger.Info("Stopping poll loop")
			return
		}
	}
}

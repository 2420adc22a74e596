// fetcher.go
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
	"encoding/json"
	"fmt"
	"sort"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/apple/foundationdb/plotsync/internal/backend"
	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// tracerName is the instrumentation name for all spans of the session.
const tracerName = "github.com/apple/foundationdb/plotsync"

// dataSource provides the two retrievals of a fetch.
type dataSource interface {
	Data(ctx context.Context) (api.DataResponse, error)
	Options(ctx context.Context) (map[string]json.RawMessage, error)
}

// dataFetcher retrieves the model data and the variable options and assembles
// the trace collection.
type dataFetcher struct {
	// source is the backend.
	source dataSource

	// logger is the logger for this fetcher.
	logger logr.Logger
}

// newDataFetcher creates a new dataFetcher.
func newDataFetcher(logger logr.Logger, source dataSource) *dataFetcher {
	return &dataFetcher{
		source: source,
		logger: logger.WithValues("area", "dataFetcher"),
	}
}

// fetch issues the data and the options request concurrently and only returns
// a result once both succeeded. If either fails, the whole fetch fails.
func (fetcher *dataFetcher) fetch(ctx context.Context) (api.FetchResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fetch")
	defer span.End()

	var data api.DataResponse
	var options map[string]json.RawMessage

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		data, err = fetcher.source.Data(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		options, err = fetcher.source.Options(groupCtx)
		return err
	})

	err := group.Wait()
	if err == nil {
		var varsData api.VarsData
		varsData, err = buildVarsData(options)
		if err == nil {
			traces := fetcher.buildTraces(data)
			span.SetAttributes(attribute.Int("traces", len(traces)))
			return api.FetchResult{ModelData: data.Model, Traces: traces, VarsData: varsData}, nil
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "fetch failed")

	return api.FetchResult{}, err
}

// buildTraces creates one trace per variable across all variable sets. If the
// response holds more than api.MuchDataThreshold variables, all traces are
// only listed in the legend.
func (fetcher *dataFetcher) buildTraces(data api.DataResponse) api.TraceCollection {
	visibility := api.VisibilityShown
	if data.VariableCount() > api.MuchDataThreshold {
		visibility = api.VisibilityLegendOnly
	}

	traces := make(api.TraceCollection, 0, data.VariableCount())
	seen := make(map[string]bool, data.VariableCount())
	for _, setName := range data.SetNames() {
		for _, variable := range data.Vars[setName] {
			if seen[variable.Name] {
				fetcher.logger.Info("Ignoring duplicate variable name", "set", setName, "name", variable.Name)
				continue
			}
			seen[variable.Name] = true

			traces = append(traces, api.Trace{
				Name:    variable.Name,
				X:       data.Time,
				Y:       variable.Data,
				Mode:    api.DefaultTraceMode,
				Type:    api.DefaultTraceType,
				Visible: visibility,
			}.DeepCopy())
		}
	}

	return traces
}

// buildVarsData copies all variable options except the ignored keys and marks
// every variable as hidden.
func buildVarsData(options map[string]json.RawMessage) (api.VarsData, error) {
	keys := make([]string, 0, len(options))
	for key := range options {
		if !api.IsIgnoredOptionKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	varsData := make(api.VarsData, len(keys))
	for _, key := range keys {
		variableOptions := api.VariableOptions{}
		err := json.Unmarshal(options[key], &variableOptions)
		if err != nil || variableOptions == nil {
			if err == nil {
				err = fmt.Errorf("options of %s are null", key)
			}
			return nil, &backend.Error{Kind: backend.ParseFailure, Endpoint: api.OptionsPath, Err: fmt.Errorf("could not parse options of %s: %w", key, err)}
		}

		variableOptions[api.HiddenOptionKey] = true
		varsData[key] = variableOptions
	}

	return varsData, nil
}

// monitor.go
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
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/apple/foundationdb/plotsync/internal/backend"
	"github.com/apple/foundationdb/plotsync/internal/certloader"
	"github.com/apple/foundationdb/plotsync/internal/store"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
)

const (
	// readHeaderTimeout bounds the time a state API client may take to send the request headers.
	readHeaderTimeout = 10 * time.Second

	// shutdownTimeout is the time the state API server gets to finish open requests.
	shutdownTimeout = 5 * time.Second
)

// backendSource combines the requests a session issues against the backend.
type backendSource interface {
	pollSource
	dataSource
}

// Monitor provides the session: it waits for the first data, creates the
// initial plots and keeps them in sync with the backend.
type Monitor struct {
	// Store holds the session state.
	Store *store.Store

	// ViewportHeight is used to size the full-screen plot.
	ViewportHeight int

	// Logger is the logger instance for this monitor.
	Logger logr.Logger

	// reporter routes failures into the error state.
	reporter *errorReporter

	// pollLoop keeps the plots in sync after the initialization.
	pollLoop *pollLoop

	// layouts applies the layout overrides file, nil if no file is configured.
	layouts *layoutWatcher

	// metrics represents the prometheus session metrics.
	metrics *metrics
}

// newMonitor creates a monitor for the provided backend.
func newMonitor(logger logr.Logger, config Config, source backendSource, sessionStore *store.Store, sessionMetrics *metrics, sessionClock clock.Clock) *Monitor {
	reporter := newErrorReporter(logger, sessionStore, config.IssueTrackerURL)
	monitor := &Monitor{
		Store:          sessionStore,
		ViewportHeight: config.ViewportHeight,
		Logger:         logger,
		reporter:       reporter,
		pollLoop: &pollLoop{
			source:   source,
			fetcher:  newDataFetcher(logger, source),
			reporter: reporter,
			store:    sessionStore,
			clock:    sessionClock,
			interval: config.PollInterval,
			metrics:  sessionMetrics,
			logger:   logger.WithValues("area", "pollLoop"),
		},
		metrics: sessionMetrics,
	}

	if config.LayoutFile != "" {
		monitor.layouts = newLayoutWatcher(logger, config.LayoutFile, sessionStore)
	}

	return monitor
}

// StartMonitor starts the state API server and runs the session until the
// context is cancelled.
func StartMonitor(ctx context.Context, logger logr.Logger, config Config) error {
	stalePolicy, err := store.ParseStalePolicy(config.StalePolicy)
	if err != nil {
		return err
	}

	httpClient, err := newBackendHTTPClient(logger, config)
	if err != nil {
		return err
	}

	backendClient, err := backend.NewClient(logger, config.BackendURL, httpClient)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	// Enable the default go metrics.
	reg.MustRegister(collectors.NewGoCollector())
	sessionMetrics := registerMetrics(reg)

	sessionStore := store.New(logger, stalePolicy)
	sessionStore.Subscribe(sessionMetrics.observeStore)

	monitor := newMonitor(logger, config, backendClient, sessionStore, sessionMetrics, clock.RealClock{})

	mux := http.NewServeMux()
	// Enable pprof endpoints for debugging purposes.
	if config.EnableDebug {
		mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
		mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
		mux.Handle("/debug/pprof/block", pprof.Handler("block"))
		mux.Handle("/debug/pprof/mutex", pprof.Handler("mutex"))
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	// Add Prometheus support
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	newStateAPI(logger, sessionStore).register(mux)

	server := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	if config.ServerCertFile != "" {
		server.TLSConfig = certloader.NewCertLoader(logger, config.ServerCertFile, config.ServerKeyFile).ServerConfig()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("Starting state API server", "listenAddress", config.ListenAddr, "tls", server.TLSConfig != nil)
		var err error
		if server.TLSConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}

		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		return monitor.Run(groupCtx)
	})

	return group.Wait()
}

// newBackendHTTPClient creates the HTTP client for the backend requests.
// Client certificates are reloaded whenever the key file changes.
func newBackendHTTPClient(logger logr.Logger, config Config) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if config.BackendCertFile != "" || config.BackendCAFile != "" {
		var loader *certloader.CertLoader
		if config.BackendCertFile != "" {
			loader = certloader.NewCertLoader(logger, config.BackendCertFile, config.BackendKeyFile)
		}

		tlsConfig, err := certloader.ClientConfig(loader, config.BackendCAFile)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &http.Client{
		Transport: transport,
		Timeout:   config.RequestTimeout,
	}, nil
}

// initialize blocks until the first fetch succeeded and creates the initial
// plots: the full-screen plot sized to the viewport and the main page plot.
// Failed fetches are reported and retried after the poll interval.
func (monitor *Monitor) initialize(ctx context.Context) error {
	monitor.Logger.Info("Waiting for initial data from backend")
	for {
		err := monitor.pollLoop.refresh(ctx)
		if err == nil {
			break
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		monitor.reporter.report(err)
		if !monitor.pollLoop.wait(ctx) {
			return ctx.Err()
		}
	}
	monitor.reporter.clear()

	fullscreenID := monitor.Store.AddPlot()
	err := monitor.Store.UpdateLayout(fullscreenID, api.FullscreenLayout(monitor.ViewportHeight))
	if err != nil {
		return err
	}
	mainID := monitor.Store.AddPlot()

	monitor.Logger.Info("Initialized plots", "fullscreenPlotID", fullscreenID, "mainPlotID", mainID, "viewportHeight", monitor.ViewportHeight)

	return nil
}

// Run initializes the session and keeps it in sync with the backend until the
// context is cancelled.
func (monitor *Monitor) Run(ctx context.Context) error {
	err := monitor.initialize(ctx)
	if err != nil {
		if ctx.Err() != nil {
			monitor.Logger.Info("Stopped before the initial data was received")
			return nil
		}

		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if monitor.layouts != nil {
		group.Go(func() error {
			return monitor.layouts.watch(groupCtx)
		})
	}
	group.Go(func() error {
		monitor.pollLoop.run(groupCtx)
		return nil
	})

	return group.Wait()
}

// main.go
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
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	config, err := ParseConfig(pflag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, closeLogger, err := setupLogger(config.LogPath)
	if err != nil {
		panic(err)
	}
	defer closeLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, config.OTLPEndpoint)
	if err != nil {
		logger.Error(err, "Error setting up tracing")
		os.Exit(1)
	}
	defer func() {
		err := shutdownTracing(context.WithoutCancel(ctx))
		if err != nil {
			logger.Error(err, "Error flushing spans")
		}
	}()

	logger.Info("Starting session", "backendURL", config.BackendURL, "pollInterval", config.PollInterval.String(), "stalePolicy", config.StalePolicy)
	err = StartMonitor(ctx, logger, config)
	if err != nil {
		logger.Error(err, "Session failed")
		closeLogger()
		os.Exit(1)
	}

	logger.Info("Session stopped")
}

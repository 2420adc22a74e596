// config.go
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
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/apple/foundationdb/plotsync/internal/store"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

// Config holds the session configuration. Every field can be set through a
// PLOTSYNC_ environment variable and overridden by the matching flag.
type Config struct {
	// BackendURL is the base URL of the backend process.
	BackendURL string `env:"PLOTSYNC_BACKEND_URL" envDefault:"http://localhost:8050"`

	// PollInterval is the delay between two poll cycles.
	PollInterval time.Duration `env:"PLOTSYNC_POLL_INTERVAL" envDefault:"1s"`

	// RequestTimeout bounds every single backend request.
	RequestTimeout time.Duration `env:"PLOTSYNC_REQUEST_TIMEOUT" envDefault:"10s"`

	// ViewportHeight is used to size the full-screen plot.
	ViewportHeight int `env:"PLOTSYNC_VIEWPORT_HEIGHT" envDefault:"900"`

	// ListenAddr is the address of the state API and metrics server.
	ListenAddr string `env:"PLOTSYNC_LISTEN_ADDR" envDefault:":8051"`

	// ServerCertFile and ServerKeyFile enable TLS for the state API.
	ServerCertFile string `env:"PLOTSYNC_SERVER_CERT_FILE"`
	ServerKeyFile  string `env:"PLOTSYNC_SERVER_KEY_FILE"`

	// BackendCertFile and BackendKeyFile define the client certificate
	// presented to the backend.
	BackendCertFile string `env:"PLOTSYNC_BACKEND_CERT_FILE"`
	BackendKeyFile  string `env:"PLOTSYNC_BACKEND_KEY_FILE"`

	// BackendCAFile defines the CA bundle used to verify the backend.
	BackendCAFile string `env:"PLOTSYNC_BACKEND_CA_FILE"`

	// LayoutFile is an optional file with layout overrides.
	LayoutFile string `env:"PLOTSYNC_LAYOUT_FILE"`

	// LogPath is an optional file that receives the logs in addition to stdout.
	LogPath string `env:"PLOTSYNC_LOG_PATH"`

	// EnableDebug enables the pprof endpoints.
	EnableDebug bool `env:"PLOTSYNC_ENABLE_DEBUG"`

	// IssueTrackerURL is embedded into every error report.
	IssueTrackerURL string `env:"PLOTSYNC_ISSUE_TRACKER_URL" envDefault:"https://github.com/BYU-PRISM/GEKKO/issues"`

	// StalePolicy is either mark or prune.
	StalePolicy string `env:"PLOTSYNC_STALE_POLICY" envDefault:"mark"`

	// OTLPEndpoint enables span export when set.
	OTLPEndpoint string `env:"PLOTSYNC_OTLP_ENDPOINT"`
}

// ParseConfig reads the environment and then the flags into a Config and
// validates the result.
func ParseConfig(flags *pflag.FlagSet, args []string) (Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	flags.StringVar(&config.BackendURL, "backend-url", config.BackendURL, "Base URL of the backend process")
	flags.DurationVar(&config.PollInterval, "poll-interval", config.PollInterval, "Delay between two poll cycles")
	flags.DurationVar(&config.RequestTimeout, "request-timeout", config.RequestTimeout, "Timeout for a single backend request")
	flags.IntVar(&config.ViewportHeight, "viewport-height", config.ViewportHeight, "Height of the viewport in pixels, used to size the full-screen plot")
	flags.StringVar(&config.ListenAddr, "listen-address", config.ListenAddr, "Listen address for the state API and metrics")
	flags.StringVar(&config.ServerCertFile, "server-cert-file", config.ServerCertFile, "Certificate for the state API. If set, the server will serve HTTPS")
	flags.StringVar(&config.ServerKeyFile, "server-key-file", config.ServerKeyFile, "Private key for the state API certificate")
	flags.StringVar(&config.BackendCertFile, "backend-cert-file", config.BackendCertFile, "Client certificate presented to the backend")
	flags.StringVar(&config.BackendKeyFile, "backend-key-file", config.BackendKeyFile, "Private key of the backend client certificate")
	flags.StringVar(&config.BackendCAFile, "backend-ca-file", config.BackendCAFile, "CA bundle used to verify the backend. Defaults to the system roots")
	flags.StringVar(&config.LayoutFile, "layout-file", config.LayoutFile, "File with plot layout overrides. It will be watched for changes")
	flags.StringVar(&config.LogPath, "log-path", config.LogPath, "Name of a file to send logs to. Logs will be sent to stdout in addition the file you pass in this argument. If this is blank, logs will only by sent to stdout")
	flags.BoolVar(&config.EnableDebug, "enable-debug", config.EnableDebug, "Enables the debug endpoints for pprof")
	flags.StringVar(&config.IssueTrackerURL, "issue-tracker-url", config.IssueTrackerURL, "Issue tracker shown in error reports")
	flags.StringVar(&config.StalePolicy, "stale-policy", config.StalePolicy, "Handling of plot traces that disappear from the backend. Valid options are mark and prune")
	flags.StringVar(&config.OTLPEndpoint, "otlp-endpoint", config.OTLPEndpoint, "OTLP/HTTP endpoint for span export. Tracing is disabled if blank")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// validate checks the configuration for values the session cannot run with.
func (config Config) validate() error {
	var errs []error

	backendURL, err := url.Parse(config.BackendURL)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid backend URL %s: %w", config.BackendURL, err))
	} else if backendURL.Scheme != "http" && backendURL.Scheme != "https" {
		errs = append(errs, fmt.Errorf("backend URL %s must use http or https", config.BackendURL))
	}

	if config.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", config.PollInterval))
	}

	if config.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", config.RequestTimeout))
	}

	if config.ViewportHeight <= api.FullscreenHeightOffset {
		errs = append(errs, fmt.Errorf("viewport height must be larger than %d, got %d", api.FullscreenHeightOffset, config.ViewportHeight))
	}

	if _, err := store.ParseStalePolicy(config.StalePolicy); err != nil {
		errs = append(errs, err)
	}

	if (config.ServerCertFile == "") != (config.ServerKeyFile == "") {
		errs = append(errs, errors.New("server certificate and key must be set together"))
	}

	if (config.BackendCertFile == "") != (config.BackendKeyFile == "") {
		errs = append(errs, errors.New("backend certificate and key must be set together"))
	}

	return errors.Join(errs...)
}

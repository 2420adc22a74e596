// reporter.go
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
	"fmt"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/apple/foundationdb/plotsync/internal/backend"
	"github.com/apple/foundationdb/plotsync/internal/store"
	"github.com/go-logr/logr"
)

const (
	// lostCommunicationHeader is the dialog title when no response reached the client.
	lostCommunicationHeader = "Lost Communication With Backend"

	// lostCommunicationBody is the remediation shown when no response reached the client.
	lostCommunicationBody = "We seem to have lost communication with the backend process. " +
		"This means that we cannot get any updates from your model. " +
		"Did you stop the script or did it crash? If so, close this window and restart it."

	// internalErrorHeader is the dialog title when the backend answered with an error.
	internalErrorHeader = "Internal Communication Error"

	// internalErrorBodyFormat embeds the status code and the status text of a server failure.
	internalErrorBodyFormat = "Please copy these details in an error report to the developers. Error Code: %d, Error: %s"

	// reportFormat points to the issue tracker.
	reportFormat = "Please report any errors as issues at %s"

	// defaultIssueTrackerURL is the issue tracker of the optimization suite.
	defaultIssueTrackerURL = "https://github.com/BYU-PRISM/GEKKO/issues"
)

// classifyFailure converts a failed request into the descriptor shown to the
// user. Failures without a status code, which includes malformed responses,
// are reported as lost communication.
func classifyFailure(err error, issueTrackerURL string) api.HTTPError {
	report := fmt.Sprintf(reportFormat, issueTrackerURL)
	statusCode, statusText := backend.Status(err)
	if statusCode == 0 {
		return api.HTTPError{
			Header: lostCommunicationHeader,
			Body:   lostCommunicationBody,
			Report: report,
		}
	}

	return api.HTTPError{
		Header: internalErrorHeader,
		Body:   fmt.Sprintf(internalErrorBodyFormat, statusCode, statusText),
		Report: report,
	}
}

// errorReporter is the only path from a failed request to the user visible
// error state.
type errorReporter struct {
	// store receives the error state transitions.
	store *store.Store

	// issueTrackerURL is embedded into every error descriptor.
	issueTrackerURL string

	// logger is the logger for this reporter.
	logger logr.Logger
}

// newErrorReporter creates a new errorReporter.
func newErrorReporter(logger logr.Logger, sessionStore *store.Store, issueTrackerURL string) *errorReporter {
	if issueTrackerURL == "" {
		issueTrackerURL = defaultIssueTrackerURL
	}

	return &errorReporter{
		store:           sessionStore,
		issueTrackerURL: issueTrackerURL,
		logger:          logger.WithValues("area", "errorReporter"),
	}
}

// report records a failure. Only the first failure of an outage opens the
// error dialog, later failures only refresh the error descriptor.
func (reporter *errorReporter) report(err error) {
	statusCode, statusText := backend.Status(err)
	reporter.logger.Error(err, "Error communicating with backend", "status", statusCode, "statusText", statusText)

	changes := reporter.store.RaiseCommunicationError(classifyFailure(err, reporter.issueTrackerURL))
	if changes.Has(store.CommunicationErrorRaised) {
		reporter.logger.Info("Communication with backend lost", "errorModalOpened", changes.Has(store.ErrorModalOpened))
	}
}

// clear resets the communication error latch after a successful cycle.
func (reporter *errorReporter) clear() {
	changes := reporter.store.ClearCommunicationError()
	if changes.Has(store.CommunicationErrorCleared) {
		reporter.logger.Info("Communication with backend restored")
	}
}

// errors.go
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


package backend

import (
	"errors"
	"fmt"
)

// FailureKind classifies a failed request to the backend.
type FailureKind string

const (
	// TransportFailure means no HTTP response reached the client.
	TransportFailure FailureKind = "TransportFailure"

	// ServerFailure means the backend answered with a non-success status.
	ServerFailure FailureKind = "ServerFailure"

	// ParseFailure means the response body could not be decoded. It is
	// handled like a transport failure.
	ParseFailure FailureKind = "ParseFailure"
)

// Error is returned for every failed request to the backend.
type Error struct {
	// Kind classifies the failure.
	Kind FailureKind

	// Endpoint is the path of the failed request.
	Endpoint string

	// StatusCode is the HTTP status code of a server failure and zero
	// otherwise.
	StatusCode int

	// StatusText is the status text sent by the backend for a server failure.
	StatusText string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (err *Error) Error() string {
	switch err.Kind {
	case ServerFailure:
		return fmt.Sprintf("request to %s failed with status %d %s", err.Endpoint, err.StatusCode, err.StatusText)
	default:
		return fmt.Sprintf("request to %s failed (%s): %v", err.Endpoint, err.Kind, err.Err)
	}
}

// Unwrap returns the underlying error.
func (err *Error) Unwrap() error {
	return err.Err
}

// Status returns the status code and status text carried by err. Errors that
// are not server failures report a zero status code.
func Status(err error) (int, string) {
	var backendErr *Error
	if !errors.As(err, &backendErr) || backendErr.Kind != ServerFailure {
		return 0, ""
	}

	return backendErr.StatusCode, backendErr.StatusText
}

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

package api

// HTTPError describes the latest communication error with the backend in a
// form that can be shown to the user.
type HTTPError struct {
	// Header is the title of the error dialog.
	Header string `json:"header"`

	// Body explains the error. For server errors this contains the status
	// code and status text so users can copy it into a bug report.
	Body string `json:"body"`

	// Report points the user to the issue tracker.
	Report string `json:"report"`
}

// ErrorState holds the communication error state of the session.
type ErrorState struct {
	// CommunicationError is latched to true on the first failure of an
	// outage and reset on the next successful poll cycle.
	CommunicationError bool `json:"communicationError"`

	// ShowErrorModal defines whether the error dialog should be open.
	ShowErrorModal bool `json:"showErrorModal"`

	// HTTPError is the descriptor of the most recent failure.
	HTTPError HTTPError `json:"httpError"`
}

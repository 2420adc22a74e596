// client.go
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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Client talks to the backend process that serves the model data.
type Client struct {
	// baseURL is the HTTP root of the backend.
	baseURL *url.URL

	// httpClient is used for all requests.
	httpClient *http.Client

	// logger is the logger for this client.
	logger logr.Logger
}

// NewClient creates a new client for the backend at baseURL. If httpClient is
// nil, http.DefaultClient is used.
func NewClient(logger logr.Logger, baseURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("could not parse backend URL %s: %w", baseURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q in backend URL %s", parsed.Scheme, baseURL)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		logger:     logger.WithName("backend").WithValues("backend", parsed.String()),
	}, nil
}

// Poll asks the backend whether new data is available.
func (client *Client) Poll(ctx context.Context) (api.PollResponse, error) {
	response := api.PollResponse{}
	err := client.get(ctx, api.PollPath, &response)

	return response, err
}

// Data fetches the model attributes and the variable samples.
func (client *Client) Data(ctx context.Context) (api.DataResponse, error) {
	response := api.DataResponse{}
	err := client.get(ctx, api.DataPath, &response)

	return response, err
}

// Options fetches the raw variable option metadata keyed by variable name.
func (client *Client) Options(ctx context.Context) (map[string]json.RawMessage, error) {
	response := map[string]json.RawMessage{}
	err := client.get(ctx, api.OptionsPath, &response)

	return response, err
}

// get issues a GET request against the endpoint and decodes the JSON body
// into target.
func (client *Client) get(ctx context.Context, endpoint string, target interface{}) error {
	requestURL := client.baseURL.JoinPath(endpoint)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return &Error{Kind: TransportFailure, Endpoint: endpoint, Err: err}
	}
	request.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(request.Header))

	response, err := client.httpClient.Do(request)
	if err != nil {
		return &Error{Kind: TransportFailure, Endpoint: endpoint, Err: err}
	}
	defer func() {
		// Drain the body so the connection can be reused.
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &Error{
			Kind:       ServerFailure,
			Endpoint:   endpoint,
			StatusCode: response.StatusCode,
			StatusText: statusText(response),
		}
	}

	err = json.NewDecoder(response.Body).Decode(target)
	if err != nil {
		return &Error{Kind: ParseFailure, Endpoint: endpoint, Err: err}
	}

	client.logger.V(1).Info("Request succeeded", "endpoint", endpoint, "status", response.StatusCode)

	return nil
}

// statusText returns the status text as sent by the server, without the
// leading status code.
func statusText(response *http.Response) string {
	text := strings.TrimPrefix(response.Status, strconv.Itoa(response.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		return http.StatusText(response.StatusCode)
	}

	return text
}

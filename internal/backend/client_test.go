// client_test.go
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
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Testing the backend client", func() {
	var server *httptest.Server
	var client *Client
	var handler http.HandlerFunc

	BeforeEach(func() {
		handler = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		var err error
		client, err = NewClient(GinkgoLogr, server.URL+"/", server.Client())
		Expect(err).NotTo(HaveOccurred())
	})

	When("the backend reports updates", func() {
		BeforeEach(func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/poll"))
				Expect(r.Method).To(Equal(http.MethodGet))
				_, _ = fmt.Fprint(w, `{"updates": true}`)
			}
		})

		It("should decode the poll response", func() {
			response, err := client.Poll(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(response.Updates).To(BeTrue())
		})
	})

	When("the backend serves data", func() {
		BeforeEach(func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/data":
					_, _ = fmt.Fprint(w, `{"model": {"a": 1}, "time": [0, 1], "vars": {"variables": {"x": {"name": "x", "data": [1, 2]}}}}`)
				case "/get_options":
					_, _ = fmt.Fprint(w, `{"INFO": {}, "x": {"LOWER": 0}}`)
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			}
		})

		It("should decode the data response", func() {
			response, err := client.Data(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(response.Time).To(HaveLen(2))
			Expect(response.Vars["variables"]).To(HaveLen(1))
		})

		It("should decode the raw options", func() {
			response, err := client.Options(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(response).To(HaveKey("INFO"))
			Expect(response).To(HaveKey("x"))
		})
	})

	When("the backend answers with a server error", func() {
		BeforeEach(func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			}
		})

		It("should return a server failure with the status", func() {
			_, err := client.Poll(context.Background())
			Expect(err).To(HaveOccurred())

			var backendErr *Error
			Expect(errors.As(err, &backendErr)).To(BeTrue())
			Expect(backendErr.Kind).To(Equal(ServerFailure))
			Expect(backendErr.Endpoint).To(Equal("/poll"))

			code, text := Status(err)
			Expect(code).To(Equal(http.StatusInternalServerError))
			Expect(text).To(Equal("Internal Server Error"))
			Expect(err.Error()).To(ContainSubstring("500 Internal Server Error"))
		})
	})

	When("the backend sends malformed JSON", func() {
		BeforeEach(func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = fmt.Fprint(w, `{"updates": tru`)
			}
		})

		It("should return a parse failure without a status", func() {
			_, err := client.Poll(context.Background())
			var backendErr *Error
			Expect(errors.As(err, &backendErr)).To(BeTrue())
			Expect(backendErr.Kind).To(Equal(ParseFailure))
			code, _ := Status(err)
			Expect(code).To(BeZero())
		})
	})

	When("the backend is not reachable", func() {
		It("should return a transport failure without a status", func() {
			server.Close()
			_, err := client.Poll(context.Background())
			var backendErr *Error
			Expect(errors.As(err, &backendErr)).To(BeTrue())
			Expect(backendErr.Kind).To(Equal(TransportFailure))
			Expect(backendErr.Unwrap()).To(HaveOccurred())
			code, text := Status(err)
			Expect(code).To(BeZero())
			Expect(text).To(BeEmpty())
		})
	})

	When("the context is cancelled", func() {
		It("should return a transport failure", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = fmt.Fprint(w, `{"updates": false}`)
			}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := client.Poll(ctx)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	DescribeTable("when creating a client", func(baseURL string, expectError bool) {
		_, err := NewClient(GinkgoLogr, baseURL, nil)
		if expectError {
			Expect(err).To(HaveOccurred())
			return
		}
		Expect(err).NotTo(HaveOccurred())
	},
		Entry("a development URL", "http://localhost:8050", false),
		Entry("a URL with a path", "https://example.com/dashboard/", false),
		Entry("a URL without scheme", "localhost:8050", true),
		Entry("a URL with an unsupported scheme", "ftp://localhost", true),
	)

	It("should ignore errors from other sources when reading the status", func() {
		code, _ := Status(errors.New("unrelated"))
		Expect(code).To(BeZero())
	})
})

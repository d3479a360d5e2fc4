// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package healthcheck_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvfactor/healthcheck"
)

var _ = Describe("Ping", func() {
	var (
		server   *httptest.Server
		paths    []string
		bodies   []string
		original string
	)

	BeforeEach(func() {
		paths, bodies = nil, nil
		original = healthcheck.PingURL

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			paths = append(paths, r.URL.Path)
			bodies = append(bodies, string(body))
			if r.URL.Path == "/missing" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte("OK"))
		}))
		healthcheck.PingURL = server.URL
	})

	AfterEach(func() {
		healthcheck.PingURL = original
		server.Close()
	})

	It("signals start, success and failure", func() {
		ctx := context.Background()
		Expect(healthcheck.Ping(ctx, "abc", healthcheck.Start, "")).To(Succeed())
		Expect(healthcheck.Ping(ctx, "abc", healthcheck.Success, "498 of 503 assets")).To(Succeed())
		Expect(healthcheck.Ping(ctx, "abc", healthcheck.Fail, "provider error")).To(Succeed())

		Expect(paths).To(Equal([]string{"/abc/start", "/abc", "/abc/fail"}))
		Expect(bodies[1]).To(Equal("498 of 503 assets"))
	})

	It("does nothing without a check id", func() {
		Expect(healthcheck.Ping(context.Background(), "", healthcheck.Start, "")).To(Succeed())
		Expect(paths).To(BeEmpty())
	})

	It("reports an unexpected status", func() {
		err := healthcheck.Ping(context.Background(), "missing", healthcheck.Success, "")
		Expect(err).To(MatchError(healthcheck.ErrStatus))
	})
})

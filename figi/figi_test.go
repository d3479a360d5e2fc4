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
package figi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/figi"
)

var _ = Describe("Figi", func() {
	var (
		server   *httptest.Server
		queries  [][]*figi.OpenFigiQuery
		original string
	)

	BeforeEach(func() {
		queries = nil
		original = figi.MappingURL

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var query []*figi.OpenFigiQuery
			Expect(json.NewDecoder(r.Body).Decode(&query)).To(Succeed())
			queries = append(queries, query)

			resp := make([]*figi.MappingResponse, len(query))
			for i, q := range query {
				if q.IdValue == "NOPE" {
					resp[i] = &figi.MappingResponse{Warning: "No identifier found."}
					continue
				}
				resp[i] = &figi.MappingResponse{Data: []*figi.OpenFigiAsset{{
					Ticker:        q.IdValue,
					CompositeFIGI: "BBG000" + q.IdValue,
				}}}
			}

			w.Header().Set("Content-Type", "application/json")
			Expect(json.NewEncoder(w).Encode(resp)).To(Succeed())
		}))

		figi.MappingURL = server.URL
	})

	AfterEach(func() {
		figi.MappingURL = original
		server.Close()
	})

	It("fills missing composite figis and caches them", func() {
		known := &data.Asset{Ticker: "KNOWN", Exchange: "US", CompositeFigi: "BBG000KEEP"}
		apple := &data.Asset{Ticker: "AAPL", Exchange: "US"}
		unknown := &data.Asset{Ticker: "NOPE", Exchange: "US"}

		figi.Enrich(context.Background(), known, apple, unknown)

		Expect(known.CompositeFigi).To(Equal("BBG000KEEP"))
		Expect(apple.CompositeFigi).To(Equal("BBG000AAPL"))
		Expect(unknown.CompositeFigi).To(BeEmpty())

		Expect(queries).To(HaveLen(1))
		Expect(queries[0]).To(HaveLen(2))
		Expect(queries[0][0].ExchangeCode).To(Equal("US"))

		cached, ok := figi.MapInstance().Get("AAPL.US")
		Expect(ok).To(BeTrue())
		Expect(cached).To(Equal("BBG000AAPL"))

		again := &data.Asset{Ticker: "AAPL", Exchange: "US"}
		figi.Enrich(context.Background(), again)
		Expect(again.CompositeFigi).To(Equal("BBG000AAPL"))
		Expect(queries).To(HaveLen(1))
	})
})

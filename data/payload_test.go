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
package data_test

import (
	"errors"
	"fmt"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvfactor/data"
)

var _ = Describe("Payload", func() {
	Context("decoding fundamentals", func() {
		It("preserves the report-id order of filings", func() {
			payload, err := data.DecodeFundamentals([]byte(`{"Financials": {"Balance_Sheet": {"quarterly": {
				"2020-06-30": {"date": "2020-06-30", "totalAssets": "200"},
				"2020-03-31": {"date": "2020-03-31", "totalAssets": "100"}
			}}}}`))
			Expect(err).NotTo(HaveOccurred())

			filings, err := payload.Section("Balance_Sheet", "quarterly")
			Expect(err).NotTo(HaveOccurred())
			Expect(filings.IDs).To(Equal([]string{"2020-06-30", "2020-03-31"}))
			Expect(filings.Len()).To(Equal(2))
			Expect(filings.Records[1]["totalAssets"]).To(Equal("100"))
		})

		It("reads annual filings from the yearly key", func() {
			payload, err := data.DecodeFundamentals([]byte(`{"Financials": {"Cash_Flow": {"yearly": [
				{"date": "2019-12-31", "netIncome": 5}
			]}}}`))
			Expect(err).NotTo(HaveOccurred())

			filings, err := payload.Section("Cash_Flow", "annual")
			Expect(err).NotTo(HaveOccurred())
			Expect(filings.IDs).To(Equal([]string{"0"}))
		})

		It("reads the currency reported next to the filings of a statement", func() {
			payload, err := data.DecodeFundamentals([]byte(`{"Financials": {"Balance_Sheet": {
				"currency_symbol": "USD",
				"quarterly": {"2020-06-30": {"date": "2020-06-30", "currency_symbol": "USD", "totalAssets": "200"}},
				"yearly": {"2019-12-31": {"date": "2019-12-31", "totalAssets": "150"}}
			}}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(payload.Financials["Balance_Sheet"].CurrencySymbol).To(Equal("USD"))

			quarterly, err := payload.Section("Balance_Sheet", "quarterly")
			Expect(err).NotTo(HaveOccurred())
			Expect(quarterly.IDs).To(Equal([]string{"2020-06-30"}))

			annual, err := payload.Section("Balance_Sheet", "annual")
			Expect(err).NotTo(HaveOccurred())
			Expect(annual.Records[0]["totalAssets"]).To(Equal("150"))
		})

		It("reports a cadence the statement does not carry", func() {
			payload, err := data.DecodeFundamentals([]byte(`{"Financials": {"Cash_Flow": {"currency_symbol": "USD"}}}`))
			Expect(err).NotTo(HaveOccurred())

			_, err = payload.Section("Cash_Flow", "quarterly")
			Expect(err).To(MatchError(data.ErrMissingField))
		})

		It("reports a missing statement", func() {
			payload, err := data.DecodeFundamentals([]byte(`{"Financials": {}}`))
			Expect(err).NotTo(HaveOccurred())

			_, err = payload.Section("Income_Statement", "quarterly")
			Expect(err).To(MatchError(data.ErrMissingField))
		})

		It("accepts outstanding shares as an object or an array", func() {
			payload, err := data.DecodeFundamentals([]byte(`{"outstandingShares": {
				"quarterly": {"0": {"dateFormatted": "2020-03-31", "shares": 1000}, "1": {"dateFormatted": "2019-12-31", "shares": "None"}},
				"annual": [{"dateFormatted": "2019-12-31", "shares": "900"}]
			}}`))
			Expect(err).NotTo(HaveOccurred())

			quarterly := payload.OutstandingShares["quarterly"]
			Expect(*quarterly).To(HaveLen(2))
			Expect(float64((*quarterly)[0].Shares)).To(Equal(1000.0))
			Expect(math.IsNaN(float64((*quarterly)[1].Shares))).To(BeTrue())

			annual := payload.OutstandingShares["annual"]
			Expect(float64((*annual)[0].Shares)).To(Equal(900.0))
		})

		It("keeps the undecoded document", func() {
			raw := []byte(`{"General": {"Code": "AAPL"}}`)
			payload, err := data.DecodeFundamentals(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(payload.Raw).To(Equal(raw))
		})
	})

	DescribeTable("converting raw values to floats",
		func(raw any, expected float64) {
			got := data.FloatValue(raw)
			if math.IsNaN(expected) {
				Expect(math.IsNaN(got)).To(BeTrue())
				return
			}
			Expect(got).To(Equal(expected))
		},
		Entry("number", 12.5, 12.5),
		Entry("numeric string", " 42 ", 42.0),
		Entry("None", "None", math.NaN()),
		Entry("empty string", "", math.NaN()),
		Entry("text", "USD", math.NaN()),
		Entry("null", nil, math.NaN()),
	)

	DescribeTable("converting raw values to text",
		func(raw any, expected string) {
			Expect(data.TextValue(raw)).To(Equal(expected))
		},
		Entry("string", "Technology", "Technology"),
		Entry("None", "None", ""),
		Entry("null", nil, ""),
		Entry("number", 3.0, "3"),
		Entry("bool", true, "true"),
	)
})

var _ = Describe("Errors", func() {
	It("matches each error to its sentinel through wrapping", func() {
		wrapped := fmt.Errorf("load AAPL.US: %w", &data.ProviderError{StatusCode: 404, Reason: "Ticker Not Found", URL: "https://example.com/fundamentals/AAPL.US"})
		Expect(errors.Is(wrapped, data.ErrProvider)).To(BeTrue())
		Expect(errors.Is(wrapped, data.ErrEmptyData)).To(BeFalse())

		var providerErr *data.ProviderError
		Expect(errors.As(wrapped, &providerErr)).To(BeTrue())
		Expect(providerErr.StatusCode).To(Equal(404))
	})

	DescribeTable("classifying recoverable failures",
		func(err error, recoverable bool) {
			Expect(data.Recoverable(err)).To(Equal(recoverable))
		},
		Entry("empty data", &data.EmptyDataError{Section: "Balance_Sheet"}, true),
		Entry("no shares", &data.NoSharesDataError{Symbol: "AAPL.US"}, true),
		Entry("missing field", &data.MissingFieldError{Field: "totalAssets"}, true),
		Entry("provider", &data.ProviderError{StatusCode: 500}, false),
		Entry("other", errors.New("boom"), false),
	)

	It("names the section of empty data", func() {
		Expect((&data.EmptyDataError{Section: "Cash_Flow"}).Error()).To(Equal("no data available: Cash_Flow"))
		Expect((&data.EmptyDataError{}).Error()).To(Equal("no data available"))
	})
})

var _ = Describe("Eod", func() {
	quotes := []*data.Eod{
		{Date: "2021-01-04", AdjustedClose: 1},
		{Date: "2021-01-05", AdjustedClose: 2},
		{Date: "bogus", AdjustedClose: 3},
		{Date: "2021-01-07", AdjustedClose: 4},
	}

	It("filters bars to an inclusive range", func() {
		filtered := data.FilterEod(quotes,
			time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2021, 1, 7, 0, 0, 0, 0, time.UTC))
		Expect(filtered).To(HaveLen(2))
		Expect(filtered[0].Date).To(Equal("2021-01-05"))
		Expect(filtered[1].Date).To(Equal("2021-01-07"))
	})

	It("leaves zero bounds open and drops unparseable dates", func() {
		Expect(data.FilterEod(quotes, time.Time{}, time.Time{})).To(HaveLen(3))
	})

	It("joins tickers and exchanges into symbols", func() {
		asset := &data.Asset{Ticker: "VOD", Exchange: "LSE"}
		Expect(asset.Symbol()).To(Equal("VOD.LSE"))
	})
})

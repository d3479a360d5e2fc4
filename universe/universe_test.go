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
package universe_test

import (
	"context"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/factor"
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/universe"
)

const emptyStatements = `{
  "General": {"Code": "BBB", "CountryName": "USA", "Sector": "", "Industry": "", "GicSector": "", "GicIndustry": "", "GicSubIndustry": ""},
  "Financials": {
    "Balance_Sheet": {"quarterly": {}},
    "Cash_Flow": {"quarterly": {}},
    "Income_Statement": {"quarterly": {}}
  }
}`

type fakeSource struct {
	mu       sync.Mutex
	payloads map[string][]byte
	prices   map[string]float64
	listing  []*data.Listing
	members  []*data.Constituent
	requests []string
}

func (src *fakeSource) Fundamentals(_ context.Context, symbol string) (*data.FundamentalsPayload, error) {
	src.mu.Lock()
	src.requests = append(src.requests, symbol)
	src.mu.Unlock()

	raw, ok := src.payloads[symbol]
	if !ok {
		return nil, &data.ProviderError{StatusCode: 404, Reason: "Ticker Not Found.", URL: "/fundamentals/" + symbol}
	}
	return data.DecodeFundamentals(raw)
}

func (src *fakeSource) PriceHistory(_ context.Context, symbol string, start, end time.Time, _ string) ([]*data.Eod, error) {
	quotes := make([]*data.Eod, 0)
	price := src.prices[symbol]
	for dt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC); dt.Month() < time.October; dt = dt.AddDate(0, 0, 1) {
		quotes = append(quotes, &data.Eod{Date: dt.Format("2006-01-02"), AdjustedClose: price, Close: price})
	}
	return data.FilterEod(quotes, start, end), nil
}

func (src *fakeSource) Intraday(context.Context, string, string) ([]*data.IntradayBar, error) {
	return nil, nil
}

func (src *fakeSource) IndexConstituents(context.Context, string, time.Time, string) ([]*data.Constituent, error) {
	return src.members, nil
}

func (src *fakeSource) ExchangeListing(context.Context, string) ([]*data.Listing, error) {
	return src.listing, nil
}

var _ = Describe("Universe", func() {
	var (
		ctx    context.Context
		source *fakeSource
		opts   universe.Options
	)

	BeforeEach(func() {
		ctx = context.Background()

		good, err := os.ReadFile("../financials/testdata/fundamentals.json")
		Expect(err).NotTo(HaveOccurred())

		source = &fakeSource{
			payloads: map[string][]byte{
				"AAA.US": good,
				"BBB.US": []byte(emptyStatements),
				"CCC.US": good,
			},
			prices: map[string]float64{"AAA.US": 10, "BBB.US": 5, "CCC.US": 20},
		}

		opts = universe.Options{
			Source: source,
			Now:    func() time.Time { return time.Date(2020, 8, 31, 0, 0, 0, 0, time.UTC) },
		}
	})

	Describe("a portfolio", func() {
		var portfolio *universe.Portfolio

		BeforeEach(func() {
			portfolio = universe.NewPortfolio(opts)
			portfolio.AddAsset("AAA", "US", 2, "")
			portfolio.AddAsset("BBB", "US", 1, "USD")
			portfolio.AddAsset("CCC", "US", 3, "USD")
		})

		It("lists its symbols", func() {
			Expect(portfolio.Symbols()).To(Equal([]string{"AAA.US", "BBB.US", "CCC.US"}))
			Expect(portfolio.Assets[0].Currency).To(Equal("USD"))
		})

		It("records an asset without statements and keeps the others in order", func() {
			results, err := portfolio.Results(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].Succeeded()).To(BeTrue())
			Expect(results[1].Succeeded()).To(BeFalse())
			Expect(results[1].Err).To(MatchError(data.ErrEmptyData))
			Expect(results[2].Asset.Ticker).To(Equal("CCC"))

			summary := universe.Summarize(portfolio.Name(), time.Now(), results)
			Expect(summary.NumSucceeded).To(Equal(2))
			Expect(summary.NumFailed).To(Equal(1))
		})

		It("computes factors for the successful assets only", func() {
			results, err := portfolio.ComputeFactors(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].Asset.Ticker).To(Equal("AAA"))
			Expect(results[1].Asset.Ticker).To(Equal("CCC"))
			for _, result := range results {
				Expect(result.Succeeded()).To(BeTrue())
			}
		})

		It("stacks successful tables sorted by date without AsOf", func() {
			table, err := portfolio.FactorsTable(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Has(financials.AsOfColumn)).To(BeFalse())
			Expect(table.Len()).To(Equal(2 * 123))

			tickers, _ := table.Text(factor.TickerColumn)
			Expect(tickers[0]).To(Equal("AAA"))
			Expect(tickers[1]).To(Equal("CCC"))

			index := table.Index()
			for i := 1; i < len(index); i++ {
				Expect(index[i].Before(index[i-1])).To(BeFalse())
			}
		})

		It("sums the holdings into a net asset value", func() {
			nav, err := portfolio.NAVHistory(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(nav.Len()).To(Equal(123))
			Expect(nav.Values[nav.Len()-1]).To(Equal(2*10.0 + 3*20.0))
		})

		It("aborts on a provider error unless told to tolerate it", func() {
			portfolio.AddAsset("ZZZ", "US", 1, "USD")
			_, err := portfolio.ComputeFactors(ctx)
			Expect(err).To(MatchError(data.ErrProvider))

			opts.TolerateProviderErrors = true
			tolerant := universe.NewPortfolio(opts)
			tolerant.AddAsset("ZZZ", "US", 1, "USD")
			tolerant.AddAsset("AAA", "US", 1, "USD")
			results, err := tolerant.Results(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Err).To(MatchError(data.ErrProvider))
			Expect(results[1].Succeeded()).To(BeTrue())

			succeeded, err := tolerant.ComputeFactors(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(succeeded).To(HaveLen(1))
			Expect(succeeded[0].Asset.Ticker).To(Equal("AAA"))
		})

		It("keeps input order when computing concurrently", func() {
			opts.Concurrency = 3
			parallel := universe.NewPortfolio(opts)
			parallel.AddAsset("CCC", "US", 1, "USD")
			parallel.AddAsset("BBB", "US", 1, "USD")
			parallel.AddAsset("AAA", "US", 1, "USD")

			results, err := parallel.Results(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Asset.Ticker).To(Equal("CCC"))
			Expect(results[2].Asset.Ticker).To(Equal("AAA"))
			Expect(results[2].Succeeded()).To(BeTrue())
		})
	})

	Describe("an exchange", func() {
		It("filters the listing by venue and type", func() {
			source.listing = []*data.Listing{
				{Code: "AAA", Exchange: "NYSE", Type: "Common Stock"},
				{Code: "SPY", Exchange: "NYSE ARCA", Type: "ETF"},
				{Code: "CCC", Exchange: "NASDAQ", Type: "Common Stock"},
			}

			exchange := universe.NewExchange("US", opts)
			tickers, err := exchange.Tickers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(tickers).To(Equal([]string{"AAA", "CCC"}))

			exchange.Venues = []string{"NASDAQ"}
			table, err := exchange.FactorsTable(ctx)
			Expect(err).NotTo(HaveOccurred())
			tickersCol, _ := table.Text(factor.TickerColumn)
			Expect(tickersCol[0]).To(Equal("CCC"))
			Expect(source.requests).To(ContainElement("CCC.US"))
		})
	})

	Describe("an index", func() {
		It("prices members on the country exchange", func() {
			source.members = []*data.Constituent{
				{Code: "AAA", Exchange: "NASDAQ"},
				{Code: "BBB", Exchange: "NYSE"},
			}

			index := universe.NewIndex("GSPC", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "", opts)
			Expect(index.Name()).To(Equal("GSPC.INDX"))

			detailed, err := index.TickersDetailed(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(detailed).To(HaveLen(2))

			results, err := index.Results(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Asset.Symbol()).To(Equal("AAA.US"))
			Expect(results[1].Err).To(MatchError(data.ErrEmptyData))

			succeeded, err := index.ComputeFactors(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(succeeded).To(HaveLen(1))
		})
	})
})

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
package equity_test

import (
	"context"
	"errors"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/equity"
	"github.com/penny-vault/pvfactor/factor"
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/frame"
)

type fakeSource struct {
	raw    []byte
	quotes []*data.Eod

	fundamentalsCalls int
	priceCalls        int
}

func (src *fakeSource) Fundamentals(_ context.Context, _ string) (*data.FundamentalsPayload, error) {
	src.fundamentalsCalls++
	return data.DecodeFundamentals(src.raw)
}

func (src *fakeSource) PriceHistory(_ context.Context, _ string, start, end time.Time, _ string) ([]*data.Eod, error) {
	src.priceCalls++
	return data.FilterEod(src.quotes, start, end), nil
}

func (src *fakeSource) Intraday(context.Context, string, string) ([]*data.IntradayBar, error) {
	return []*data.IntradayBar{{Timestamp: 1577975400, Datetime: "2020-01-02 14:30:00", Close: 10}}, nil
}

func (src *fakeSource) IndexConstituents(context.Context, string, time.Time, string) ([]*data.Constituent, error) {
	return nil, nil
}

func (src *fakeSource) ExchangeListing(context.Context, string) ([]*data.Listing, error) {
	return nil, nil
}

type recordingStore struct {
	symbols []string
	err     error
}

func (store *recordingStore) Save(_ context.Context, symbol string, _ *frame.Frame) error {
	store.symbols = append(store.symbols, symbol)
	return store.err
}

func day(s string) time.Time {
	dt, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return dt
}

func flatPrices(from, to string, price float64) []*data.Eod {
	quotes := make([]*data.Eod, 0)
	for dt := day(from); !dt.After(day(to)); dt = dt.AddDate(0, 0, 1) {
		quotes = append(quotes, &data.Eod{Date: dt.Format("2006-01-02"), Close: price, AdjustedClose: price})
	}
	return quotes
}

var _ = Describe("Stock", func() {
	var (
		ctx    context.Context
		source *fakeSource
		stock  *equity.Stock
	)

	BeforeEach(func() {
		ctx = context.Background()

		raw, err := os.ReadFile("../financials/testdata/fundamentals.json")
		Expect(err).NotTo(HaveOccurred())

		source = &fakeSource{raw: raw, quotes: flatPrices("2020-01-01", "2020-09-30", 10)}
		stock = equity.NewStock("TEST", "US", source)
		stock.Now = func() time.Time { return time.Date(2020, 8, 31, 16, 0, 0, 0, time.UTC) }
	})

	It("joins ticker and exchange into the provider symbol", func() {
		Expect(stock.Symbol()).To(Equal("TEST.US"))
	})

	Describe("memoized payloads", func() {
		It("fetches fundamentals once until refreshed", func() {
			_, err := stock.RawFinancials(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = stock.GeneralInfo(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(source.fundamentalsCalls).To(Equal(1))

			_, err = stock.RawFinancials(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(source.fundamentalsCalls).To(Equal(2))
		})

		It("reloads prices when refreshed or when the range changes", func() {
			_, err := stock.History(ctx, day("2020-01-01"), day("2020-06-30"), false)
			Expect(err).NotTo(HaveOccurred())
			_, err = stock.History(ctx, day("2020-01-01"), day("2020-06-30"), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(source.priceCalls).To(Equal(1))

			_, err = stock.History(ctx, day("2020-01-01"), day("2020-06-30"), true)
			Expect(err).NotTo(HaveOccurred())
			Expect(source.priceCalls).To(Equal(2))

			quotes, err := stock.History(ctx, day("2020-02-01"), day("2020-02-29"), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(quotes).To(HaveLen(29))
			Expect(source.priceCalls).To(Equal(3))
		})

		It("caches intraday bars per interval", func() {
			bars, err := stock.Intraday(ctx, "5m", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(bars).To(HaveLen(1))
		})
	})

	Describe("descriptive data", func() {
		It("looks up a general item", func() {
			sector, err := stock.GeneralItem(ctx, "Sector")
			Expect(err).NotTo(HaveOccurred())
			Expect(sector).To(Equal("Technology"))

			_, err = stock.GeneralItem(ctx, "Nonexistent")
			Expect(err).To(MatchError(data.ErrMissingField))
		})

		It("lists industry attributes in order", func() {
			industry, err := stock.IndustryInfo(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(industry[0]).To(Equal(financials.Attribute{Name: "CountryName", Value: "USA"}))
			Expect(industry).To(HaveLen(len(financials.IndustryFields)))
		})
	})

	Describe("market cap", func() {
		It("multiplies forward-filled shares by the adjusted close", func() {
			mc, err := stock.MarketCapHistory(ctx, day("2020-01-01"), day("2020-08-31"), false)
			Expect(err).NotTo(HaveOccurred())

			caps, _ := mc.Float(factor.MarketCapColumn)
			Expect(caps[mc.Len()-1]).To(Equal(105_000_000.0))
		})

		It("merges market cap with the statements", func() {
			merged, err := stock.MergeHistory(ctx, day("2020-01-01"), day("2020-08-31"), financials.Quarterly)
			Expect(err).NotTo(HaveOccurred())
			Expect(merged.Has(factor.MarketCapColumn)).To(BeTrue())
			Expect(merged.Has("totalAssets")).To(BeTrue())
			Expect(merged.Has(financials.AsOfColumn)).To(BeTrue())
		})
	})

	Describe("factors", func() {
		It("assembles the table from the first filing to today", func() {
			store := &recordingStore{}
			table, err := stock.Factors(ctx, equity.FactorOptions{Store: store})
			Expect(err).NotTo(HaveOccurred())

			Expect(table.Index()[0]).To(Equal(day("2020-05-01")))
			Expect(table.Index()[table.Len()-1]).To(Equal(day("2020-08-31")))
			Expect(table.Len()).To(Equal(123))

			for _, name := range factor.BaseCatalog().Names() {
				Expect(table.Has(name)).To(BeTrue(), name)
			}
			Expect(table.Has(factor.Vol1Y)).To(BeTrue())

			income, _ := table.Float("Income Ratio")
			Expect(income[table.Len()-1]).To(BeNumerically("~", 30.0/105_000_000.0, 1e-18))

			tickers, _ := table.Text(factor.TickerColumn)
			Expect(tickers[0]).To(Equal("TEST"))
			sectors, _ := table.Text("Sector")
			Expect(sectors[0]).To(Equal("Technology"))

			Expect(store.symbols).To(Equal([]string{"TEST.US"}))

			stored, state := stock.StoredFactors()
			Expect(state).To(Equal(equity.Cached))
			Expect(stored).To(BeIdenticalTo(table))
		})

		It("returns the table when the snapshot cannot be saved", func() {
			store := &recordingStore{err: errors.New("read-only file system")}
			table, err := stock.Factors(ctx, equity.FactorOptions{Store: store, Resample: frame.Monthly})
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Index()).To(Equal([]time.Time{day("2020-05-31"), day("2020-06-30"), day("2020-07-31"), day("2020-08-31")}))
		})

		It("reports a stock without statements as recoverable", func() {
			source.raw = []byte(`{"General":{"Code":"EMPTY"},"Financials":{}}`)
			_, err := stock.Factors(ctx, equity.FactorOptions{})
			Expect(err).To(HaveOccurred())
			Expect(data.Recoverable(err)).To(BeTrue())

			_, state := stock.StoredFactors()
			Expect(state).To(Equal(equity.Unset))
		})
	})
})

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
package cmd

import (
	"math"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvfactor/factor"
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/frame"
	"github.com/penny-vault/pvfactor/provider"
	"github.com/penny-vault/pvfactor/snapshot"
)

var _ = Describe("Config", func() {
	AfterEach(func() {
		viper.Set("ratios", nil)
		viper.Set("snapshot.dir", defaultSnapshotDir)
		viper.Set("snapshot.disabled", false)
		viper.Set("snapshot.parquet", false)
		viper.Set("factors.filing_type", "quarterly")
		viper.Set("factors.resample", "")
	})

	DescribeTable("parsing holdings",
		func(arg, ticker, exchange string, quantity float64) {
			gotTicker, gotExchange, gotQuantity, err := parseHolding(arg)
			Expect(err).NotTo(HaveOccurred())
			Expect(gotTicker).To(Equal(ticker))
			Expect(gotExchange).To(Equal(exchange))
			Expect(gotQuantity).To(Equal(quantity))
		},
		Entry("without quantity", "AAPL.US", "AAPL", "US", 1.0),
		Entry("with quantity", "VOD.LSE:250", "VOD", "LSE", 250.0),
		Entry("with fractional quantity", "MSFT.US:0.5", "MSFT", "US", 0.5),
	)

	DescribeTable("rejecting malformed holdings",
		func(arg string) {
			_, _, _, err := parseHolding(arg)
			Expect(err).To(HaveOccurred())
		},
		Entry("no exchange", "AAPL"),
		Entry("empty ticker", ".US"),
		Entry("bad quantity", "AAPL.US:ten"),
	)

	It("extends the base catalog with configured ratios", func() {
		viper.Set("ratios", []map[string]any{
			{"name": "Revenue Ratio", "numerator": "totalRevenue", "denominator": "marketCap"},
			{"name": "Net Income", "numerator": "netIncome"},
		})

		catalog, err := catalogFromConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(catalog.Len()).To(Equal(factor.BaseCatalog().Len() + 2))

		ratio, ok := catalog.Get("Revenue Ratio")
		Expect(ok).To(BeTrue())
		Expect(ratio).To(Equal(factor.Over("totalRevenue", "marketCap")))

		ratio, ok = catalog.Get("Net Income")
		Expect(ok).To(BeTrue())
		Expect(ratio.Denominator).To(Equal(factor.One))

		names := catalog.Names()
		Expect(names[len(names)-2:]).To(Equal([]string{"Revenue Ratio", "Net Income"}))
	})

	It("reads ratios from a toml config with their names intact", func() {
		viper.SetConfigType("toml")
		DeferCleanup(func() {
			Expect(viper.ReadConfig(strings.NewReader(""))).To(Succeed())
		})
		Expect(viper.ReadConfig(strings.NewReader(`
[[ratios]]
name = "Revenue Ratio"
numerator = "totalRevenue"
denominator = "marketCap"
`))).To(Succeed())

		catalog, err := catalogFromConfig()
		Expect(err).NotTo(HaveOccurred())
		_, ok := catalog.Get("Revenue Ratio")
		Expect(ok).To(BeTrue())
	})

	It("rejects a ratio without a numerator", func() {
		viper.Set("ratios", []map[string]any{
			{"name": "Broken", "denominator": "marketCap"},
		})

		_, err := catalogFromConfig()
		Expect(err).To(HaveOccurred())
	})

	It("builds factor options from settings", func() {
		viper.Set("factors.filing_type", "annual")
		viper.Set("factors.resample", "M")

		viper.Set("snapshot.disabled", true)

		opts, err := factorOptions()
		Expect(err).NotTo(HaveOccurred())
		Expect(opts.FilingType).To(Equal(financials.Annual))
		Expect(opts.Resample).To(Equal(frame.Monthly))
		Expect(opts.Store).To(BeNil())
	})

	It("writes a csv snapshot of every asset to merged by default", func() {
		viper.Set("snapshot.dir", "")

		stores, ok := snapshotStore().(snapshot.Multi)
		Expect(ok).To(BeTrue())
		Expect(stores).To(HaveLen(1))

		csvStore, ok := stores[0].(*snapshot.CSVStore)
		Expect(ok).To(BeTrue())
		Expect(csvStore.Dir).To(Equal("merged"))
	})

	It("rejects an unknown filing type", func() {
		viper.Set("factors.filing_type", "monthly")

		_, err := factorOptions()
		Expect(err).To(MatchError(financials.ErrUnknownFilingType))
	})

	It("writes snapshots as csv and parquet when enabled", func() {
		viper.Set("snapshot.dir", GinkgoT().TempDir())
		viper.Set("snapshot.parquet", true)

		stores, ok := snapshotStore().(snapshot.Multi)
		Expect(ok).To(BeTrue())
		Expect(stores).To(HaveLen(2))
	})

	It("summarizes the provider cache", func() {
		cache := provider.NewCache(nil, "eodhd_cache", false)
		summary := cacheSummary(cache, provider.CacheStats{Fundamentals: 1200, Prices: 3, Bytes: 2048})

		Expect(summary).To(ContainSubstring("offline mode, 2.0 kB"))
		Expect(summary).To(ContainSubstring("| Fundamentals | 1,200 |"))
		Expect(summary).To(ContainSubstring("| End-of-day prices | 3 |"))
	})

	Context("threshold decisions", func() {
		var table *frame.Frame

		BeforeEach(func() {
			day := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
			table = frame.New([]time.Time{day, day, day, day})
			table.SetFloat("signal", []float64{0.5, -0.5, 0.05, math.NaN()})
		})

		It("goes long above the threshold only", func() {
			args := thresholdArgs{Column: "signal", Threshold: 0.1}
			decisions := make([]float64, table.Len())
			for i := range decisions {
				decisions[i] = thresholdDecision(table.Row(i), args)
			}
			Expect(decisions).To(Equal([]float64{1, 0, 0, 0}))
		})

		It("goes short below the negated threshold when enabled", func() {
			args := thresholdArgs{Column: "signal", Threshold: 0.1, Short: true}
			decisions := make([]float64, table.Len())
			for i := range decisions {
				decisions[i] = thresholdDecision(table.Row(i), args)
			}
			Expect(decisions).To(Equal([]float64{1, -1, 0, 0}))
		})
	})
})

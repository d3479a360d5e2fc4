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
package financials_test

import (
	"math"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/financials"
)

func day(s string) time.Time {
	dt, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return dt
}

func loadPayload() *data.FundamentalsPayload {
	raw, err := os.ReadFile("testdata/fundamentals.json")
	Expect(err).NotTo(HaveOccurred())
	payload, err := data.DecodeFundamentals(raw)
	Expect(err).NotTo(HaveOccurred())
	return payload
}

var _ = Describe("Financials", func() {
	var payload *data.FundamentalsPayload

	BeforeEach(func() {
		payload = loadPayload()
	})

	Describe("business day offsets", func() {
		DescribeTable("adding the filing lag",
			func(from, expected string) {
				Expect(financials.AddBusinessDays(day(from), financials.FilingLag)).To(Equal(day(expected)))
			},
			Entry("from a Tuesday", "2020-03-31", "2020-05-05"),
			Entry("from a Saturday", "2020-02-29", "2020-04-03"),
			Entry("from a Friday", "2020-01-03", "2020-02-07"),
		)

		It("labels quarters from the report date", func() {
			Expect(financials.QuarterLabel(day("2020-03-31"))).To(Equal("2020Q1"))
			Expect(financials.QuarterLabel(day("2020-10-01"))).To(Equal("2020Q4"))
		})
	})

	Describe("parsing a statement", func() {
		It("indexes by resolved filing date and drops descriptive fields", func() {
			filings, err := payload.Section("Balance_Sheet", "quarterly")
			Expect(err).NotTo(HaveOccurred())

			table, err := financials.Parse(filings, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Index()).To(Equal([]time.Time{day("2020-05-05"), day("2020-07-31")}))
			Expect(table.Has("currency_symbol")).To(BeFalse())
			Expect(table.Has(financials.FilingDateColumn)).To(BeFalse())

			debt, ok := table.Float("shortLongTermDebt")
			Expect(ok).To(BeTrue())
			Expect(debt[0]).To(Equal(20.0))
			Expect(math.IsNaN(debt[1])).To(BeTrue())

			investments, _ := table.Float("investments")
			Expect(math.IsNaN(investments[0])).To(BeTrue())

			reportDates, _ := table.Text(financials.ReportDateColumn)
			Expect(reportDates).To(Equal([]string{"2020-03-31", "2020-06-30"}))
		})

		It("indexes by report date when asked", func() {
			filings, err := payload.Section("Income_Statement", "quarterly")
			Expect(err).NotTo(HaveOccurred())

			table, err := financials.Parse(filings, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Index()).To(Equal([]time.Time{day("2020-03-31"), day("2020-06-30")}))
		})

		It("keeps the first record when two resolve to the same date", func() {
			payload, err := data.DecodeFundamentals([]byte(`{"Financials": {"Balance_Sheet": {"quarterly": {
				"a": {"date": "2020-03-31", "filing_date": "2020-04-30", "cash": "1"},
				"b": {"date": "2020-03-30", "filing_date": "2020-04-30", "cash": "2"}
			}}}}`))
			Expect(err).NotTo(HaveOccurred())

			filings, err := payload.Section("Balance_Sheet", "quarterly")
			Expect(err).NotTo(HaveOccurred())

			table, err := financials.Parse(filings, true)
			Expect(err).NotTo(HaveOccurred())
			cash, _ := table.Float("cash")
			Expect(cash).To(Equal([]float64{1}))
		})

		It("fails on an empty section", func() {
			_, err := financials.Parse(&data.Filings{}, true)
			Expect(err).To(MatchError(data.ErrEmptyData))
		})

		It("fails when a record has no report date", func() {
			payload, err := data.DecodeFundamentals([]byte(`{"Financials": {"Cash_Flow": {"quarterly": [
				{"filing_date": "2020-04-30", "netIncome": "1"}
			]}}}`))
			Expect(err).NotTo(HaveOccurred())

			filings, err := payload.Section("Cash_Flow", "quarterly")
			Expect(err).NotTo(HaveOccurred())

			_, err = financials.Parse(filings, true)
			Expect(err).To(MatchError(data.ErrMissingField))
		})
	})

	Describe("full financial history", func() {
		It("joins the statements and stamps AsOf from the report date", func() {
			history, err := financials.FullHistory(payload, financials.Quarterly, true)
			Expect(err).NotTo(HaveOccurred())

			Expect(history.Index()).To(Equal([]time.Time{day("2020-05-01"), day("2020-05-05"), day("2020-07-31")}))

			asOf, ok := history.Text(financials.AsOfColumn)
			Expect(ok).To(BeTrue())
			Expect(asOf).To(Equal([]string{"2020Q1", "2020Q1", "2020Q2"}))

			// cash flow precedes the income statement
			netIncome, _ := history.Float("netIncome")
			Expect(netIncome[2]).To(Equal(30.0))

			cols := history.Columns()
			Expect(cols[len(cols)-1]).To(Equal(financials.AsOfColumn))
			Expect(history.Has(financials.ReportDateColumn)).To(BeFalse())
		})

		It("reads the yearly section for annual filings", func() {
			history, err := financials.FullHistory(payload, financials.Annual, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(history.Index()).To(Equal([]time.Time{day("2020-02-01")}))

			asOf, _ := history.Text(financials.AsOfColumn)
			Expect(asOf).To(Equal([]string{"2019Q4"}))
		})

		It("reports an empty statement section", func() {
			payload.Financials["Cash_Flow"].Quarterly = &data.Filings{}
			_, err := financials.FullHistory(payload, financials.Quarterly, true)
			Expect(err).To(MatchError(data.ErrEmptyData))
			Expect(err.Error()).To(ContainSubstring("Cash_Flow.quarterly"))
		})

		It("reports a missing statement", func() {
			delete(payload.Financials, "Income_Statement")
			_, err := financials.FullHistory(payload, financials.Quarterly, true)
			Expect(err).To(MatchError(data.ErrMissingField))
		})
	})

	Describe("outstanding shares", func() {
		It("prefers quarterly counts", func() {
			shares, err := financials.SharesHistory(payload, "TEST.US")
			Expect(err).NotTo(HaveOccurred())
			Expect(shares.Index()).To(Equal([]time.Time{day("2020-03-31"), day("2020-06-30")}))
			vals, _ := shares.Float(financials.SharesColumn)
			Expect(vals).To(Equal([]float64{10200000, 10500000}))
		})

		It("falls back to annual counts", func() {
			delete(payload.OutstandingShares, "quarterly")
			shares, err := financials.SharesHistory(payload, "TEST.US")
			Expect(err).NotTo(HaveOccurred())
			Expect(shares.Index()).To(Equal([]time.Time{day("2019-12-31")}))
		})

		It("fails without any share data", func() {
			payload.OutstandingShares = nil
			_, err := financials.SharesHistory(payload, "TEST.US")
			Expect(err).To(MatchError(data.ErrNoSharesData))
		})
	})

	Describe("descriptive information", func() {
		It("returns the industry classification", func() {
			industry, err := financials.IndustryInfo(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(industry).To(HaveLen(len(financials.IndustryFields)))
			Expect(industry[1]).To(Equal(financials.Attribute{Name: "Sector", Value: "Technology"}))
		})

		It("treats null general fields as empty", func() {
			general := financials.GeneralInfo(payload)
			Expect(general[3]).To(Equal(financials.Attribute{Name: "InternationalDomestic", Value: ""}))
		})

		It("fails when an industry field is missing", func() {
			delete(payload.General, "GicSubIndustry")
			_, err := financials.IndustryInfo(payload)
			Expect(err).To(MatchError(data.ErrMissingField))
		})
	})
})

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

// Package financials turns the nested statements of a fundamentals payload
// into date-indexed tables.
package financials

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
)

const (
	// FilingLag is the number of business days added to a report date when
	// the provider does not know the filing date.
	FilingLag = 25

	// ReportDateColumn holds each row's report date (YYYY-MM-DD).
	ReportDateColumn = "date"
	FilingDateColumn = "filing_date"
)

// AddBusinessDays moves t forward n weekdays. Starting on a weekend, the first
// step lands on the following Monday.
func AddBusinessDays(t time.Time, n int) time.Time {
	for n > 0 {
		t = t.AddDate(0, 0, 1)
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			continue
		}
		n--
	}
	return t
}

// QuarterLabel returns the calendar quarter of t, e.g. 2020Q1.
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1)
}

// ResolveFilingDate returns the filing date of a record, substituting the
// report date plus FilingLag business days when it is missing or null.
func ResolveFilingDate(reportDate time.Time, filingDate string) time.Time {
	if filingDate == "" || filingDate == data.NullDate {
		return AddBusinessDays(reportDate, FilingLag)
	}

	dt, err := time.Parse(data.DateLayout, filingDate)
	if err != nil {
		return AddBusinessDays(reportDate, FilingLag)
	}

	return dt
}

// Parse converts the filings of one statement and cadence into a table
// indexed by filing date (useFilingDate) or report date. The index is sorted
// and unique; for a repeated date the record that came first in the payload
// is kept. Line items become numeric columns with "None" and empty values
// missing. Purely descriptive fields are dropped. The report date is kept in
// the ReportDateColumn text column.
func Parse(filings *data.Filings, useFilingDate bool) (*frame.Frame, error) {
	if filings.Len() == 0 {
		return nil, &data.EmptyDataError{}
	}

	index := make([]time.Time, filings.Len())
	reportDates := make([]string, filings.Len())
	for i, rec := range filings.Records {
		raw := data.TextValue(rec[ReportDateColumn])
		if raw == "" || raw == data.NullDate {
			return nil, &data.MissingFieldError{Field: ReportDateColumn, Source: "report " + filings.IDs[i]}
		}

		reportDate, err := time.Parse(data.DateLayout, raw)
		if err != nil {
			return nil, &data.MissingFieldError{Field: ReportDateColumn, Source: "report " + filings.IDs[i]}
		}

		reportDates[i] = reportDate.Format(data.DateLayout)
		if useFilingDate {
			index[i] = ResolveFilingDate(reportDate, data.TextValue(rec[FilingDateColumn]))
		} else {
			index[i] = reportDate
		}
	}

	table := frame.New(index)
	for _, field := range lineItems(filings) {
		vals := make([]float64, filings.Len())
		for i, rec := range filings.Records {
			vals[i] = data.FloatValue(rec[field])
		}
		table.SetFloat(field, vals)
	}
	table.SetText(ReportDateColumn, reportDates)

	return table.SortIndex().DropDuplicateIndex(), nil
}

// lineItems lists the numeric fields present in any record, sorted by name.
// A field whose only non-missing values are text is descriptive and skipped.
func lineItems(filings *data.Filings) []string {
	numeric := make(map[string]bool)
	seen := make(map[string]bool)
	for _, rec := range filings.Records {
		for field, val := range rec {
			if field == ReportDateColumn || field == FilingDateColumn {
				continue
			}
			seen[field] = true
			if !data.IsMissing(val) && !math.IsNaN(data.FloatValue(val)) {
				numeric[field] = true
			}
		}
	}

	fields := make([]string, 0, len(seen))
	for field := range seen {
		if numeric[field] || allMissing(filings, field) {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	return fields
}

func allMissing(filings *data.Filings, field string) bool {
	for _, rec := range filings.Records {
		if !data.IsMissing(rec[field]) {
			return false
		}
	}
	return true
}

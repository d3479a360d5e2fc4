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
package financials

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
)

// AsOfColumn holds the quarter label of a row's report date.
const AsOfColumn = "AsOf"

type FilingType string

const (
	Quarterly FilingType = "quarterly"
	Annual    FilingType = "annual"
)

var (
	ErrUnknownFilingType = errors.New("unknown filing type")
)

func ParseFilingType(s string) (FilingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quarterly", "q":
		return Quarterly, nil
	case "annual", "yearly", "a", "y":
		return Annual, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilingType, s)
	}
}

// FullHistory parses the balance sheet, cash flow and income statement under
// the same cadence and index policy and outer-joins them on the index. When a
// line item appears in more than one statement the earlier statement wins.
// The AsOf column is the quarter of the report date even when rows are
// indexed by filing date; for a row missing from the first statement the
// next statement that has it supplies the date.
func FullHistory(payload *data.FundamentalsPayload, filingType FilingType, useFilingDate bool) (*frame.Frame, error) {
	tables := make([]*frame.Frame, 0, len(data.StatementSections))
	asOf := make(map[time.Time]string)

	for _, statement := range data.StatementSections {
		filings, err := payload.Section(statement, string(filingType))
		if err != nil {
			return nil, err
		}

		table, err := Parse(filings, useFilingDate)
		if err != nil {
			var empty *data.EmptyDataError
			if errors.As(err, &empty) {
				empty.Section = fmt.Sprintf("%s.%s", statement, filingType)
			}
			return nil, fmt.Errorf("parse %s: %w", statement, err)
		}

		reportDates, _ := table.Text(ReportDateColumn)
		for i, dt := range table.Index() {
			key := dt.UTC()
			if _, ok := asOf[key]; ok {
				continue
			}
			reportDate, err := time.Parse(data.DateLayout, reportDates[i])
			if err != nil {
				continue
			}
			asOf[key] = QuarterLabel(reportDate)
		}

		tables = append(tables, table.Drop(ReportDateColumn))
	}

	history := frame.Join(tables...)
	labels := make([]string, history.Len())
	for i, dt := range history.Index() {
		labels[i] = asOf[dt.UTC()]
	}
	history.SetText(AsOfColumn, labels)

	return history, nil
}

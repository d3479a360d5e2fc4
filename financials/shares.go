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
	"math"
	"time"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
)

const SharesColumn = "shares"

// SharesHistory returns outstanding share counts indexed by date. Quarterly
// counts are preferred; annual counts are used when quarterly ones are absent
// or empty.
func SharesHistory(payload *data.FundamentalsPayload, symbol string) (*frame.Frame, error) {
	for _, cadence := range []string{"quarterly", "annual"} {
		entries := payload.OutstandingShares[cadence]
		table := sharesTable(entries)
		if table != nil {
			return table, nil
		}
	}

	return nil, &data.NoSharesDataError{Symbol: symbol}
}

func sharesTable(entries *data.SharesEntries) *frame.Frame {
	if entries == nil || len(*entries) == 0 {
		return nil
	}

	index := make([]time.Time, 0, len(*entries))
	shares := make([]float64, 0, len(*entries))
	for _, entry := range *entries {
		raw := entry.DateFormatted
		if raw == "" {
			raw = entry.Date
		}

		dt, err := time.Parse(data.DateLayout, raw)
		if err != nil {
			continue
		}

		index = append(index, dt)
		shares = append(shares, float64(entry.Shares))
	}

	if len(index) == 0 {
		return nil
	}

	table := frame.New(index)
	table.SetFloat(SharesColumn, shares)
	table = table.SortIndex().DropDuplicateIndex()

	// a section whose counts are all missing carries no information
	vals, _ := table.Float(SharesColumn)
	for _, v := range vals {
		if !math.IsNaN(v) {
			return table
		}
	}

	return nil
}

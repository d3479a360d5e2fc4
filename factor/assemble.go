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
package factor

import (
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/frame"
)

type AssembleInput struct {
	FinancialHistory *frame.Frame

	// MarketCap is the daily market-cap table, normally already carrying the
	// technical factor columns.
	MarketCap *frame.Frame

	Catalog  *Catalog
	Industry []financials.Attribute
	Ticker   string

	// Resample, when set, keeps the last observation per bucket.
	Resample frame.Rule
}

// Assemble builds the factor table of one asset: ratios computed over the
// joined fundamentals and market cap, outer-joined with the market-cap table,
// optionally resampled, then stamped with the industry attributes and the
// ticker on every row.
func Assemble(in AssembleInput) (*frame.Frame, error) {
	catalog := in.Catalog
	if catalog == nil {
		catalog = BaseCatalog()
	}

	ratios, err := Ratios(in.FinancialHistory, in.MarketCap, catalog, true)
	if err != nil {
		return nil, err
	}

	table := frame.Join(ratios, in.MarketCap)
	if in.Resample != "" {
		table = table.ResampleLast(in.Resample)
	}

	for _, attr := range in.Industry {
		table.Broadcast(attr.Name, attr.Value)
	}
	table.Broadcast(TickerColumn, in.Ticker)

	return table, nil
}

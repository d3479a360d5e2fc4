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
	"time"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/frame"
)

const (
	AdjustedCloseColumn = "Adjusted_close"
	MarketCapColumn     = "marketCap"
	TickerColumn        = "Ticker"
)

// PriceFrame converts end-of-day bars into a table indexed by date. Bars with
// an unparseable date are skipped.
func PriceFrame(quotes []*data.Eod) *frame.Frame {
	index := make([]time.Time, 0, len(quotes))
	kept := make([]*data.Eod, 0, len(quotes))
	for _, quote := range quotes {
		dt, err := quote.EventDate()
		if err != nil {
			continue
		}
		index = append(index, dt)
		kept = append(kept, quote)
	}

	open := make([]float64, len(kept))
	high := make([]float64, len(kept))
	low := make([]float64, len(kept))
	closePx := make([]float64, len(kept))
	adjusted := make([]float64, len(kept))
	volume := make([]float64, len(kept))
	for i, quote := range kept {
		open[i] = quote.Open
		high[i] = quote.High
		low[i] = quote.Low
		closePx[i] = quote.Close
		adjusted[i] = quote.AdjustedClose
		volume[i] = quote.Volume
	}

	prices := frame.New(index)
	prices.SetFloat("Open", open)
	prices.SetFloat("High", high)
	prices.SetFloat("Low", low)
	prices.SetFloat("Close", closePx)
	prices.SetFloat(AdjustedCloseColumn, adjusted)
	prices.SetFloat("Volume", volume)

	return prices.SortIndex().DropDuplicateIndex()
}

// MarketCap resamples share counts and adjusted closes to daily frequency
// independently, joins them, forward-fills and multiplies. A share count
// therefore applies to every day until the next report.
func MarketCap(prices, shares *frame.Frame) (*frame.Frame, error) {
	if !shares.Has(financials.SharesColumn) {
		return nil, &data.MissingFieldError{Field: financials.SharesColumn, Source: "shares history"}
	}

	if !prices.Has(AdjustedCloseColumn) {
		return nil, &data.MissingFieldError{Field: AdjustedCloseColumn, Source: "price history"}
	}

	dailyShares := shares.Select(financials.SharesColumn).SortIndex().ResampleDaily()
	dailyPrices := prices.Select(AdjustedCloseColumn).SortIndex().ResampleDaily()

	joined := frame.Join(dailyShares, dailyPrices).FFill()

	sharesCol, _ := joined.Float(financials.SharesColumn)
	priceCol, _ := joined.Float(AdjustedCloseColumn)
	marketCap := make([]float64, joined.Len())
	for i := range marketCap {
		marketCap[i] = sharesCol[i] * priceCol[i]
	}
	frame.FFillFloats(marketCap)
	joined.SetFloat(MarketCapColumn, marketCap)

	return joined, nil
}

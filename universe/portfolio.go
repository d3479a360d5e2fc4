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
package universe

import (
	"context"
	"math"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/factor"
	"github.com/penny-vault/pvfactor/frame"
)

const navColumn = "nav"

// Portfolio is an explicit list of holdings.
type Portfolio struct {
	Assets []*data.Asset

	opts  Options
	table *frame.Frame
}

func NewPortfolio(opts Options) *Portfolio {
	return &Portfolio{
		Assets: make([]*data.Asset, 0),
		opts:   opts,
	}
}

func (portfolio *Portfolio) Name() string {
	return "portfolio"
}

// AddAsset appends a holding; currency defaults to USD.
func (portfolio *Portfolio) AddAsset(ticker, exchange string, quantity float64, currency string) {
	if currency == "" {
		currency = "USD"
	}

	portfolio.Assets = append(portfolio.Assets, &data.Asset{
		Ticker:   ticker,
		Exchange: exchange,
		Quantity: quantity,
		Currency: currency,
	})
}

// Symbols returns the provider symbol of every holding.
func (portfolio *Portfolio) Symbols() []string {
	symbols := make([]string, len(portfolio.Assets))
	for i, asset := range portfolio.Assets {
		symbols[i] = asset.Symbol()
	}
	return symbols
}

func (portfolio *Portfolio) Tickers(_ context.Context) ([]string, error) {
	tickers := make([]string, len(portfolio.Assets))
	for i, asset := range portfolio.Assets {
		tickers[i] = asset.Ticker
	}
	return tickers, nil
}

// Results computes every asset and returns each outcome, failures included,
// in holding order.
func (portfolio *Portfolio) Results(ctx context.Context) ([]*Result, error) {
	results, err := Aggregate(ctx, portfolio.Assets, portfolio.opts)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// ComputeFactors returns the results of the assets that succeeded.
func (portfolio *Portfolio) ComputeFactors(ctx context.Context) ([]*Result, error) {
	results, err := portfolio.Results(ctx)
	if err != nil {
		return nil, err
	}

	return Successes(results), nil
}

func (portfolio *Portfolio) FactorsTable(ctx context.Context) (*frame.Frame, error) {
	results, err := portfolio.ComputeFactors(ctx)
	if err != nil {
		return nil, err
	}

	portfolio.table = FactorsTable(results)
	return portfolio.table, nil
}

// NAVHistory values every holding at its adjusted close times quantity,
// forward-fills each holding independently and sums across holdings. The
// factor table is computed first if needed.
func (portfolio *Portfolio) NAVHistory(ctx context.Context) (frame.Series, error) {
	if portfolio.table == nil {
		if _, err := portfolio.FactorsTable(ctx); err != nil {
			return frame.Series{}, err
		}
	}

	table := portfolio.table
	if table.Len() == 0 {
		return frame.Series{}, nil
	}

	prices, ok := table.Float(factor.AdjustedCloseColumn)
	if !ok {
		return frame.Series{}, &data.MissingFieldError{Field: factor.AdjustedCloseColumn, Source: "factor table"}
	}

	tickers, ok := table.Text(factor.TickerColumn)
	if !ok {
		return frame.Series{}, &data.MissingFieldError{Field: factor.TickerColumn, Source: "factor table"}
	}

	quantity := make(map[string]float64, len(portfolio.Assets))
	for _, asset := range portfolio.Assets {
		quantity[asset.Ticker] = asset.Quantity
	}

	navs := make([]float64, table.Len())
	for i := range navs {
		qty, ok := quantity[tickers[i]]
		if !ok {
			navs[i] = math.NaN()
			continue
		}
		navs[i] = prices[i] * qty
	}

	long := table.Select(factor.TickerColumn)
	long.SetFloat(navColumn, navs)

	wide, err := frame.Pivot(long, factor.TickerColumn, navColumn)
	if err != nil {
		return frame.Series{}, err
	}

	return wide.FFill().RowSum(), nil
}

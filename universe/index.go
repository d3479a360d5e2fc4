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
	"time"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
	"github.com/penny-vault/pvfactor/provider"
)

// Index is the membership of a market index on a given date. Members are
// priced on the exchange named by Country.
type Index struct {
	Symbol  string
	AsOf    time.Time
	Country string

	opts Options
}

func NewIndex(index string, asOf time.Time, country string, opts Options) *Index {
	if country == "" {
		country = "US"
	}

	return &Index{
		Symbol:  provider.IndexSymbol(index),
		AsOf:    asOf,
		Country: country,
		opts:    opts,
	}
}

func (index *Index) Name() string {
	return index.Symbol
}

// TickersDetailed returns the constituents with their descriptive fields.
func (index *Index) TickersDetailed(ctx context.Context) ([]*data.Constituent, error) {
	constituents, err := index.opts.Source.IndexConstituents(ctx, index.Symbol, index.AsOf, index.Country)
	if err != nil {
		return nil, err
	}

	return constituents, nil
}

func (index *Index) Tickers(ctx context.Context) ([]string, error) {
	constituents, err := index.TickersDetailed(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, len(constituents))
	for i, constituent := range constituents {
		tickers[i] = constituent.Code
	}
	return tickers, nil
}

func (index *Index) Results(ctx context.Context) ([]*Result, error) {
	tickers, err := index.Tickers(ctx)
	if err != nil {
		return nil, err
	}

	results, err := Aggregate(ctx, assetsFor(tickers, index.Country), index.opts)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// ComputeFactors returns the results of the assets that succeeded.
func (index *Index) ComputeFactors(ctx context.Context) ([]*Result, error) {
	results, err := index.Results(ctx)
	if err != nil {
		return nil, err
	}

	return Successes(results), nil
}

func (index *Index) FactorsTable(ctx context.Context) (*frame.Frame, error) {
	results, err := index.ComputeFactors(ctx)
	if err != nil {
		return nil, err
	}
	return FactorsTable(results), nil
}

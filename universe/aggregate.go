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

// Package universe computes factors over collections of assets: an explicit
// portfolio, the listing of an exchange or the members of an index.
package universe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/equity"
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/frame"
	"github.com/penny-vault/pvfactor/provider"
)

// Options configures a batch factor computation.
type Options struct {
	Source provider.Source
	Factor equity.FactorOptions

	// Concurrency bounds the number of assets computed at once; values
	// below 2 compute sequentially.
	Concurrency int

	// Refresh reloads each asset's fundamentals before computing.
	Refresh bool

	// TolerateProviderErrors records provider failures per asset instead of
	// aborting the batch.
	TolerateProviderErrors bool

	// Now is handed to every stock; it defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of one asset in a batch.
type Result struct {
	Asset *data.Asset
	Stock *equity.Stock
	Table *frame.Frame
	Err   error
}

func (result *Result) Succeeded() bool {
	return result.Err == nil && result.Table != nil
}

// Successes keeps the results that produced a factor table, in order.
func Successes(results []*Result) []*Result {
	out := make([]*Result, 0, len(results))
	for _, result := range results {
		if result != nil && result.Succeeded() {
			out = append(out, result)
		}
	}
	return out
}

// Collection is a set of assets whose factors are computed together.
type Collection interface {
	Name() string
	Tickers(ctx context.Context) ([]string, error)
	Results(ctx context.Context) ([]*Result, error)
	ComputeFactors(ctx context.Context) ([]*Result, error)
	FactorsTable(ctx context.Context) (*frame.Frame, error)
}

// Aggregate computes the factor table of every asset. Results are returned in
// input order. Recoverable failures are logged and recorded on the result; any
// other failure cancels the batch and is returned.
func Aggregate(ctx context.Context, assets []*data.Asset, opts Options) ([]*Result, error) {
	results := make([]*Result, len(assets))

	group, groupCtx := errgroup.WithContext(ctx)
	if opts.Concurrency > 1 {
		group.SetLimit(opts.Concurrency)
	} else {
		group.SetLimit(1)
	}

	for idx, asset := range assets {
		idx, asset := idx, asset
		group.Go(func() error {
			result := computeOne(groupCtx, asset, opts)
			results[idx] = result

			if result.Err == nil {
				return nil
			}

			if data.Recoverable(result.Err) ||
				(opts.TolerateProviderErrors && errors.Is(result.Err, data.ErrProvider)) {
				return nil
			}

			return result.Err
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func computeOne(ctx context.Context, asset *data.Asset, opts Options) *Result {
	logger := zerolog.Ctx(ctx).With().Str("Symbol", asset.Symbol()).Logger()

	stock := equity.NewStock(asset.Ticker, asset.Exchange, opts.Source)
	stock.Now = opts.Now

	result := &Result{
		Asset: asset,
		Stock: stock,
	}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	if _, err := stock.RawFinancials(ctx, opts.Refresh); err != nil {
		result.Err = err
		logger.Warn().Err(err).Msg("factor computation failed")
		return result
	}

	table, err := stock.Factors(ctx, opts.Factor)
	if err != nil {
		result.Err = err
		logger.Warn().Err(err).Msg("factor computation failed")
		return result
	}

	result.Table = table
	logger.Info().Int("NumRows", table.Len()).Msg("factor computation successful")
	return result
}

// FactorsTable stacks the tables of every successful result, drops the AsOf
// column and stable-sorts by date.
func FactorsTable(results []*Result) *frame.Frame {
	tables := make([]*frame.Frame, 0, len(results))
	for _, result := range results {
		if result != nil && result.Succeeded() {
			tables = append(tables, result.Table)
		}
	}

	if len(tables) == 0 {
		return frame.Empty()
	}

	return frame.Concat(tables...).Drop(financials.AsOfColumn).SortIndex()
}

// Summarize describes a finished batch.
func Summarize(collection string, start time.Time, results []*Result) *data.RunSummary {
	summary := &data.RunSummary{
		ID:         uuid.New(),
		Collection: collection,
		StartTime:  start,
		EndTime:    time.Now(),
		NumAssets:  len(results),
	}

	for _, result := range results {
		if result.Succeeded() {
			summary.NumSucceeded++
			summary.NumObservations += result.Table.Len()
		} else {
			summary.NumFailed++
		}
	}

	return summary
}

func assetsFor(tickers []string, exchange string) []*data.Asset {
	assets := make([]*data.Asset, len(tickers))
	for i, ticker := range tickers {
		assets[i] = &data.Asset{Ticker: ticker, Exchange: exchange}
	}
	return assets
}

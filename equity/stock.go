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

// Package equity computes the per-asset factor pipeline for a single stock.
package equity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/factor"
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/frame"
	"github.com/penny-vault/pvfactor/provider"
	"github.com/penny-vault/pvfactor/snapshot"
)

// FactorOptions controls Stock.Factors.
type FactorOptions struct {
	FilingType financials.FilingType

	// Resample, when set, keeps the last observation per bucket.
	Resample frame.Rule

	// Catalog defaults to factor.BaseCatalog().
	Catalog *factor.Catalog

	// Store receives the assembled table; a failed save is logged.
	Store snapshot.Store

	// Refresh reloads the price history before computing market cap.
	Refresh bool
}

type historyRange struct {
	start time.Time
	end   time.Time
}

// Stock is one listed equity. Raw payloads are memoized until an accessor
// is called with refresh set; everything derived is recomputed from them.
// A Stock is not safe for concurrent use.
type Stock struct {
	Ticker   string
	Exchange string

	// IndexByReportDate indexes financial statements by their report date
	// instead of the date they became public.
	IndexByReportDate bool

	// Now returns the current time; it defaults to time.Now.
	Now func() time.Time

	source provider.Source

	raw          memo[*data.FundamentalsPayload]
	history      memo[[]*data.Eod]
	historyRange historyRange
	intraday     memo[[]*data.IntradayBar]
	interval     string
	factors      memo[*frame.Frame]
}

func NewStock(ticker, exchange string, source provider.Source) *Stock {
	return &Stock{
		Ticker:   ticker,
		Exchange: exchange,
		source:   source,
	}
}

func (stock *Stock) Symbol() string {
	return data.Symbol(stock.Ticker, stock.Exchange)
}

func (stock *Stock) now() time.Time {
	if stock.Now != nil {
		return stock.Now()
	}
	return time.Now()
}

// RawFinancials returns the fundamentals payload of the stock.
func (stock *Stock) RawFinancials(ctx context.Context, refresh bool) (*data.FundamentalsPayload, error) {
	if refresh {
		stock.factors.reset()
	}

	return stock.raw.get(refresh, func() (*data.FundamentalsPayload, error) {
		zerolog.Ctx(ctx).Debug().Str("Symbol", stock.Symbol()).Msg("loading fundamentals")
		return stock.source.Fundamentals(ctx, stock.Symbol())
	})
}

// History returns daily bars between start and end inclusive. Asking for a
// different range than the cached one reloads.
func (stock *Stock) History(ctx context.Context, start, end time.Time, refresh bool) ([]*data.Eod, error) {
	requested := historyRange{start: start, end: end}
	if stock.history.state == Cached && stock.historyRange != requested {
		refresh = true
	}

	quotes, err := stock.history.get(refresh, func() ([]*data.Eod, error) {
		zerolog.Ctx(ctx).Debug().Str("Symbol", stock.Symbol()).Time("Start", start).Time("End", end).Msg("loading price history")
		return stock.source.PriceHistory(ctx, stock.Symbol(), start, end, "d")
	})
	if err != nil {
		return nil, err
	}

	stock.historyRange = requested
	return quotes, nil
}

func (stock *Stock) Intraday(ctx context.Context, interval string, refresh bool) ([]*data.IntradayBar, error) {
	if stock.intraday.state == Cached && stock.interval != interval {
		refresh = true
	}

	bars, err := stock.intraday.get(refresh, func() ([]*data.IntradayBar, error) {
		return stock.source.Intraday(ctx, stock.Symbol(), interval)
	})
	if err != nil {
		return nil, err
	}

	stock.interval = interval
	return bars, nil
}

// GeneralInfo returns the descriptive attributes of the stock.
func (stock *Stock) GeneralInfo(ctx context.Context) ([]financials.Attribute, error) {
	payload, err := stock.RawFinancials(ctx, false)
	if err != nil {
		return nil, err
	}
	return financials.GeneralInfo(payload), nil
}

// GeneralItem looks up a single entry of the General section.
func (stock *Stock) GeneralItem(ctx context.Context, item string) (any, error) {
	payload, err := stock.RawFinancials(ctx, false)
	if err != nil {
		return nil, err
	}

	value, ok := financials.GeneralItem(payload, item)
	if !ok {
		zerolog.Ctx(ctx).Warn().Str("Symbol", stock.Symbol()).Str("Item", item).Msg("general item does not exist")
		return nil, &data.MissingFieldError{Field: item, Source: "General"}
	}

	return value, nil
}

func (stock *Stock) IndustryInfo(ctx context.Context) ([]financials.Attribute, error) {
	payload, err := stock.RawFinancials(ctx, false)
	if err != nil {
		return nil, err
	}
	return financials.IndustryInfo(payload)
}

func (stock *Stock) FullFinancialHistory(ctx context.Context, filingType financials.FilingType) (*frame.Frame, error) {
	payload, err := stock.RawFinancials(ctx, false)
	if err != nil {
		return nil, err
	}
	return financials.FullHistory(payload, filingType, !stock.IndexByReportDate)
}

func (stock *Stock) SharesHistory(ctx context.Context) (*frame.Frame, error) {
	payload, err := stock.RawFinancials(ctx, false)
	if err != nil {
		return nil, err
	}
	return financials.SharesHistory(payload, stock.Symbol())
}

// MarketCapHistory returns the daily shares, adjusted close and market cap.
func (stock *Stock) MarketCapHistory(ctx context.Context, start, end time.Time, refresh bool) (*frame.Frame, error) {
	quotes, err := stock.History(ctx, start, end, refresh)
	if err != nil {
		return nil, err
	}

	shares, err := stock.SharesHistory(ctx)
	if err != nil {
		return nil, err
	}

	return factor.MarketCap(factor.PriceFrame(quotes), shares)
}

// MergeHistory outer-joins the market cap history with the financial
// statements.
func (stock *Stock) MergeHistory(ctx context.Context, start, end time.Time, filingType financials.FilingType) (*frame.Frame, error) {
	history, err := stock.FullFinancialHistory(ctx, filingType)
	if err != nil {
		return nil, err
	}

	marketCap, err := stock.MarketCapHistory(ctx, start, end, false)
	if err != nil {
		return nil, err
	}

	return frame.Join(marketCap, history), nil
}

// Factors assembles the factor table of the stock from its first filing to
// today and hands it to opts.Store.
func (stock *Stock) Factors(ctx context.Context, opts FactorOptions) (*frame.Frame, error) {
	logger := zerolog.Ctx(ctx)

	if opts.FilingType == "" {
		opts.FilingType = financials.Quarterly
	}

	history, err := stock.FullFinancialHistory(ctx, opts.FilingType)
	if err != nil {
		return nil, err
	}

	if history.Len() == 0 {
		return nil, &data.EmptyDataError{Section: fmt.Sprintf("Financials.%s", opts.FilingType)}
	}

	first := history.Index()[0]
	today := frame.Day(stock.now())

	marketCap, err := stock.MarketCapHistory(ctx, provider.HistoryStart, today, opts.Refresh)
	if err != nil {
		return nil, err
	}

	marketCap, err = factor.AddTechnicals(marketCap)
	if err != nil {
		return nil, err
	}
	marketCap = marketCap.Slice(first, today)

	industry, err := stock.IndustryInfo(ctx)
	if err != nil {
		return nil, err
	}

	table, err := factor.Assemble(factor.AssembleInput{
		FinancialHistory: history,
		MarketCap:        marketCap,
		Catalog:          opts.Catalog,
		Industry:         industry,
		Ticker:           stock.Ticker,
		Resample:         opts.Resample,
	})
	if err != nil {
		return nil, err
	}

	stock.factors.value = table
	stock.factors.state = Cached

	if opts.Store != nil {
		if err := opts.Store.Save(ctx, stock.Symbol(), table); err != nil {
			logger.Warn().Err(err).Str("Symbol", stock.Symbol()).Msg("could not save factor snapshot")
		}
	}

	return table, nil
}

// StoredFactors returns the table produced by the last call to Factors.
func (stock *Stock) StoredFactors() (*frame.Frame, CacheState) {
	return stock.factors.value, stock.factors.state
}

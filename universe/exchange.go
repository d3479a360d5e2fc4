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
	"fmt"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
)

// Exchange is every listed symbol of an exchange code, optionally narrowed to
// some venues and security types.
type Exchange struct {
	Code string

	// Venues keeps only listings on these exchanges when non-empty.
	Venues []string

	// Types keeps only listings of these security types when non-empty.
	Types []string

	opts Options
}

// NewExchange returns an exchange universe restricted to common stock.
func NewExchange(code string, opts Options) *Exchange {
	return &Exchange{
		Code:  code,
		Types: []string{string(data.CommonStock)},
		opts:  opts,
	}
}

func (exchange *Exchange) Name() string {
	return fmt.Sprintf("exchange %s", exchange.Code)
}

// Listings returns the filtered exchange listing.
func (exchange *Exchange) Listings(ctx context.Context) ([]*data.Listing, error) {
	all, err := exchange.opts.Source.ExchangeListing(ctx, exchange.Code)
	if err != nil {
		return nil, err
	}

	venues := toSet(exchange.Venues)
	types := toSet(exchange.Types)

	listings := make([]*data.Listing, 0, len(all))
	for _, listing := range all {
		if len(venues) > 0 && !venues[listing.Exchange] {
			continue
		}
		if len(types) > 0 && !types[listing.Type] {
			continue
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func (exchange *Exchange) Tickers(ctx context.Context) ([]string, error) {
	listings, err := exchange.Listings(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, len(listings))
	for i, listing := range listings {
		tickers[i] = listing.Code
	}
	return tickers, nil
}

func (exchange *Exchange) Results(ctx context.Context) ([]*Result, error) {
	tickers, err := exchange.Tickers(ctx)
	if err != nil {
		return nil, err
	}

	results, err := Aggregate(ctx, assetsFor(tickers, exchange.Code), exchange.opts)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// ComputeFactors returns the results of the assets that succeeded.
func (exchange *Exchange) ComputeFactors(ctx context.Context) ([]*Result, error) {
	results, err := exchange.Results(ctx)
	if err != nil {
		return nil, err
	}

	return Successes(results), nil
}

func (exchange *Exchange) FactorsTable(ctx context.Context) (*frame.Frame, error) {
	results, err := exchange.ComputeFactors(ctx)
	if err != nil {
		return nil, err
	}
	return FactorsTable(results), nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

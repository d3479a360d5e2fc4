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
package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/pkginfo"
)

const (
	DefaultBaseURL   = "https://eodhistoricaldata.com/api"
	DefaultRateLimit = 1000 // requests per minute
	DefaultTimeout   = 30 * time.Second
)

// EODHD is a client for the EOD Historical Data REST API.
type EODHD struct {
	baseURL string
	client  *resty.Client
	limiter *rate.Limiter
}

type Option func(*EODHD)

func WithBaseURL(baseURL string) Option {
	return func(eod *EODHD) {
		eod.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRateLimit sets the maximum number of requests per minute.
func WithRateLimit(perMinute int) Option {
	return func(eod *EODHD) {
		if perMinute <= 0 {
			perMinute = DefaultRateLimit
		}
		eod.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/float64(61)), 1)
	}
}

func NewEODHD(apiKey string, opts ...Option) *EODHD {
	client := resty.New().
		SetQueryParam("api_token", apiKey).
		SetHeader("User-Agent", pkginfo.UserAgent()).
		SetTimeout(DefaultTimeout)

	eod := &EODHD{
		baseURL: DefaultBaseURL,
		client:  client,
	}

	WithRateLimit(DefaultRateLimit)(eod)

	for _, opt := range opts {
		opt(eod)
	}

	return eod
}

func (eod *EODHD) get(ctx context.Context, path string, params map[string]string) (*resty.Response, error) {
	logger := zerolog.Ctx(ctx)

	if err := eod.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := eod.baseURL + path
	resp, err := eod.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		logger.Error().Err(err).Str("URL", endpoint).Msg("resty returned an error when querying eodhd")
		return nil, err
	}

	if resp.StatusCode() >= 300 {
		reason := http.StatusText(resp.StatusCode())
		if body := strings.TrimSpace(string(resp.Body())); body != "" && len(body) < 256 {
			reason = body
		}

		logger.Error().Int("StatusCode", resp.StatusCode()).Str("URL", endpoint).Msg("eodhd returned an invalid HTTP response")
		return nil, &data.ProviderError{StatusCode: resp.StatusCode(), Reason: reason, URL: endpoint}
	}

	return resp, nil
}

// FundamentalsRaw returns the undecoded fundamentals document of symbol.
func (eod *EODHD) FundamentalsRaw(ctx context.Context, symbol string) ([]byte, error) {
	resp, err := eod.get(ctx, "/fundamentals/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (eod *EODHD) Fundamentals(ctx context.Context, symbol string) (*data.FundamentalsPayload, error) {
	raw, err := eod.FundamentalsRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}

	payload, err := data.DecodeFundamentals(raw)
	if err != nil {
		return nil, fmt.Errorf("decode fundamentals for %s: %w", symbol, err)
	}

	return payload, nil
}

// PriceHistory returns end-of-day bars in ascending date order. period is d,
// w or m.
func (eod *EODHD) PriceHistory(ctx context.Context, symbol string, start, end time.Time, period string) ([]*data.Eod, error) {
	if period == "" {
		period = "d"
	}

	params := map[string]string{
		"period": period,
		"order":  "a",
		"fmt":    "json",
	}

	if !start.IsZero() {
		params["from"] = start.Format(data.DateLayout)
	}

	if !end.IsZero() {
		params["to"] = end.Format(data.DateLayout)
	}

	resp, err := eod.get(ctx, "/eod/"+url.PathEscape(symbol), params)
	if err != nil {
		return nil, err
	}

	quotes := make([]*data.Eod, 0)
	if err := json.Unmarshal(resp.Body(), &quotes); err != nil {
		return nil, fmt.Errorf("decode eod prices for %s: %w", symbol, err)
	}

	return quotes, nil
}

// Intraday returns intraday bars; interval is 1m, 5m or 1h.
func (eod *EODHD) Intraday(ctx context.Context, symbol string, interval string) ([]*data.IntradayBar, error) {
	if interval == "" {
		interval = "5m"
	}

	resp, err := eod.get(ctx, "/intraday/"+url.PathEscape(symbol), map[string]string{
		"interval": interval,
		"fmt":      "json",
	})
	if err != nil {
		return nil, err
	}

	bars := make([]*data.IntradayBar, 0)
	if err := json.Unmarshal(resp.Body(), &bars); err != nil {
		return nil, fmt.Errorf("decode intraday prices for %s: %w", symbol, err)
	}

	return bars, nil
}

// ExchangeListingRaw returns the exchange symbol list as CSV.
func (eod *EODHD) ExchangeListingRaw(ctx context.Context, code string) ([]byte, error) {
	resp, err := eod.get(ctx, "/exchange-symbol-list/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (eod *EODHD) ExchangeListing(ctx context.Context, code string) ([]*data.Listing, error) {
	raw, err := eod.ExchangeListingRaw(ctx, code)
	if err != nil {
		return nil, err
	}

	return parseListing(raw)
}

func parseListing(raw []byte) ([]*data.Listing, error) {
	listings := make([]*data.Listing, 0)
	if err := gocsv.UnmarshalBytes(raw, &listings); err != nil {
		return nil, fmt.Errorf("parse exchange listing: %w", err)
	}
	return listings, nil
}

func (eod *EODHD) IndexConstituents(ctx context.Context, index string, asOf time.Time, country string) ([]*data.Constituent, error) {
	raw, err := eod.FundamentalsRaw(ctx, IndexSymbol(index))
	if err != nil {
		return nil, err
	}

	return Constituents(ctx, raw, asOf, country)
}

func (eod *EODHD) Exchanges(ctx context.Context) ([]*data.Exchange, error) {
	resp, err := eod.get(ctx, "/exchanges-list/", map[string]string{"fmt": "json"})
	if err != nil {
		return nil, err
	}

	exchanges := make([]*data.Exchange, 0)
	if err := json.Unmarshal(resp.Body(), &exchanges); err != nil {
		return nil, fmt.Errorf("decode exchanges list: %w", err)
	}

	return exchanges, nil
}

func (eod *EODHD) Search(ctx context.Context, query string) ([]*data.SearchResult, error) {
	resp, err := eod.get(ctx, "/search/"+url.PathEscape(query), map[string]string{"fmt": "json"})
	if err != nil {
		return nil, err
	}

	results := make([]*data.SearchResult, 0)
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	return results, nil
}

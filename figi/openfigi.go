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
package figi

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/pkginfo"
)

const maxQuerySize = 100

// MappingURL is the OpenFIGI mapping endpoint.
var MappingURL = "https://api.openfigi.com/v3/mapping"

type MappingResponse struct {
	Data    []*OpenFigiAsset `json:"data"`
	Warning string           `json:"warning"`
}

type OpenFigiAsset struct {
	Figi                string `json:"figi"`
	SecurityType        string `json:"securityType"`
	MarketSector        string `json:"marketSector"`
	Ticker              string `json:"ticker"`
	Name                string `json:"name"`
	ExchangeCode        string `json:"exchCode"`
	ShareClassFIGI      string `json:"shareClassFIGI"`
	CompositeFIGI       string `json:"compositeFIGI"`
	SecurityType2       string `json:"securityType2"`
	SecurityDescription string `json:"securityDescription"`
}

type OpenFigiQuery struct {
	IdType                  string `json:"idType"`
	IdValue                 string `json:"idValue"`
	ExchangeCode            string `json:"exchCode,omitempty"`
	MarketSectorDescription string `json:"marketSecDes"`
}

func rateLimit() *rate.Limiter {
	dur := (time.Second * 6) / 25
	openFigiRate := rate.Every(dur)
	return rate.NewLimiter(openFigiRate, 10)
}

func mapFigis(ctx context.Context, query []*OpenFigiQuery) ([]*MappingResponse, error) {
	logger := zerolog.Ctx(ctx)

	apiKey := viper.GetString("openfigi.apikey")
	mappingResponse := make([]*MappingResponse, 0)
	client := resty.New()
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("X-OPENFIGI-APIKEY", apiKey).
		SetHeader("User-Agent", pkginfo.UserAgent()).
		SetBody(query).
		SetResult(&mappingResponse).
		Post(MappingURL)

	logger.Debug().Str("URL", MappingURL).Int("NumTickers", len(query)).Msg("map tickers to FIGIs")

	if err != nil {
		logger.Error().Err(err).Msg("OpenFigi api called errored out")
		return nil, err
	}

	if resp.StatusCode() >= 400 {
		logger.Error().Int("StatusCode", resp.StatusCode()).Str("Body", string(resp.Body())).Msg("openfigi api call returned invalid status code")
		return nil, &data.ProviderError{StatusCode: resp.StatusCode(), Reason: resp.Status(), URL: MappingURL}
	}

	return mappingResponse, nil
}

// exchangeCode translates a provider exchange code to the OpenFIGI one.
// Codes without a known translation leave the exchange unconstrained.
func exchangeCode(exchange string) string {
	switch exchange {
	case "US":
		return "US"
	case "LSE":
		return "LN"
	case "TO":
		return "CN"
	case "XETRA":
		return "GY"
	default:
		return ""
	}
}

// Enrich fills the composite FIGI of assets that lack one, first from the
// local cache and then from OpenFIGI. Lookup failures are logged.
func Enrich(ctx context.Context, assets ...*data.Asset) {
	cache := MapInstance()

	missing := make([]*data.Asset, 0, len(assets))
	for _, asset := range assets {
		if asset.CompositeFigi != "" {
			continue
		}

		if compositeFigi, ok := cache.Get(asset.Symbol()); ok {
			asset.CompositeFigi = compositeFigi
			continue
		}

		missing = append(missing, asset)
	}

	if len(missing) == 0 {
		return
	}

	figiMap := LookupFigi(ctx, missing, rateLimit())
	for _, asset := range missing {
		if assetFigi, ok := figiMap[asset.Symbol()]; ok && assetFigi.CompositeFIGI != "" {
			asset.CompositeFigi = assetFigi.CompositeFIGI
			cache.Set(asset.Symbol(), assetFigi.CompositeFIGI)
		}
	}
}

// LookupFigi queries OpenFIGI in batches and returns the first match of each
// asset keyed by its provider symbol.
func LookupFigi(ctx context.Context, assets []*data.Asset, rateLimiter *rate.Limiter) map[string]*OpenFigiAsset {
	logger := zerolog.Ctx(ctx)
	result := make(map[string]*OpenFigiAsset, len(assets))

	for start := 0; start < len(assets); start += maxQuerySize {
		end := start + maxQuerySize
		if end > len(assets) {
			end = len(assets)
		}
		batch := assets[start:end]

		query := make([]*OpenFigiQuery, len(batch))
		for idx, asset := range batch {
			query[idx] = &OpenFigiQuery{
				IdType:                  "TICKER",
				IdValue:                 asset.Ticker,
				ExchangeCode:            exchangeCode(asset.Exchange),
				MarketSectorDescription: "Equity",
			}
		}

		if err := rateLimiter.Wait(ctx); err != nil {
			logger.Error().Err(err).Msg("rate limiter failed")
			return result
		}

		mappingResponse, err := mapFigis(ctx, query)
		if err != nil {
			continue
		}

		// responses are positional: one per query entry
		for idx, resp := range mappingResponse {
			if idx >= len(batch) || len(resp.Data) == 0 {
				continue
			}
			result[batch[idx].Symbol()] = resp.Data[0]
		}
	}

	return result
}

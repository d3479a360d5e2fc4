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
package data

import (
	"fmt"
)

type AssetType string

const (
	CommonStock  AssetType = "Common Stock"
	ETF          AssetType = "ETF"
	MutualFund   AssetType = "FUND"
	PreferredStk AssetType = "Preferred Stock"
	Index        AssetType = "INDEX"
	UnknownAsset AssetType = "Unknown"
)

// Asset is a holding in a portfolio.
type Asset struct {
	Ticker        string  `json:"ticker" toml:"ticker"`
	Exchange      string  `json:"exchange" toml:"exchange"`
	Quantity      float64 `json:"quantity" toml:"quantity"`
	Currency      string  `json:"currency" toml:"currency"`
	CompositeFigi string  `json:"composite_figi" toml:"composite_figi"`
}

func (asset *Asset) Symbol() string {
	return Symbol(asset.Ticker, asset.Exchange)
}

// Symbol joins a ticker and exchange code in the form the provider expects,
// e.g. AAPL.US.
func Symbol(ticker, exchange string) string {
	return fmt.Sprintf("%s.%s", ticker, exchange)
}

// Listing is one row of an exchange symbol list.
type Listing struct {
	Code     string `json:"Code" csv:"Code"`
	Name     string `json:"Name" csv:"Name"`
	Country  string `json:"Country" csv:"Country"`
	Exchange string `json:"Exchange" csv:"Exchange"`
	Currency string `json:"Currency" csv:"Currency"`
	Type     string `json:"Type" csv:"Type"`
	Isin     string `json:"Isin" csv:"Isin"`
}

// Constituent is a member of an index.
type Constituent struct {
	Code        string `json:"Code"`
	Exchange    string `json:"Exchange"`
	Name        string `json:"Name"`
	Sector      string `json:"Sector"`
	Industry    string `json:"Industry"`
	StartDate   string `json:"StartDate"`
	EndDate     string `json:"EndDate"`
	IsActiveNow bool   `json:"IsActiveNow"`
	IsDelisted  bool   `json:"IsDelisted"`
}

func (constituent *Constituent) Symbol() string {
	return Symbol(constituent.Code, constituent.Exchange)
}

type Exchange struct {
	Name         string `json:"Name"`
	Code         string `json:"Code"`
	OperatingMIC string `json:"OperatingMIC"`
	Country      string `json:"Country"`
	Currency     string `json:"Currency"`
	CountryISO2  string `json:"CountryISO2"`
	CountryISO3  string `json:"CountryISO3"`
}

type SearchResult struct {
	Code              string  `json:"Code"`
	Exchange          string  `json:"Exchange"`
	Name              string  `json:"Name"`
	Type              string  `json:"Type"`
	Country           string  `json:"Country"`
	Currency          string  `json:"Currency"`
	ISIN              string  `json:"ISIN"`
	PreviousClose     float64 `json:"previousClose"`
	PreviousCloseDate string  `json:"previousCloseDate"`
}

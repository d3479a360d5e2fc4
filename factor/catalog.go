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

// Package factor computes financial ratios and technical indicators and
// assembles them into per-asset factor tables.
package factor

// One is the denominator of a ratio that is its numerator unchanged.
const One = "1"

// Ratio divides the Numerator column by the Denominator column.
type Ratio struct {
	Numerator   string `mapstructure:"numerator" toml:"numerator"`
	Denominator string `mapstructure:"denominator" toml:"denominator"`
}

// Over builds a ratio of two columns.
func Over(numerator, denominator string) Ratio {
	return Ratio{Numerator: numerator, Denominator: denominator}
}

// Level builds a ratio that reports a column as is.
func Level(numerator string) Ratio {
	return Ratio{Numerator: numerator, Denominator: One}
}

// Catalog is an ordered set of named ratios. The zero value is empty and
// ready to use.
type Catalog struct {
	names  []string
	ratios map[string]Ratio
}

var baseRatios = []struct {
	name  string
	ratio Ratio
}{
	{"Assets to Equity", Over("totalAssets", "totalStockholderEquity")},
	{"EBIT to Equity", Over("ebit", "totalStockholderEquity")},
	{"Liability to Assets", Over("totalLiab", "totalAssets")},
	{"Liability to Equity", Over("totalLiab", "totalStockholderEquity")},
	{"Short Term Debt to Cash", Over("shortLongTermDebt", "cash")},
	{"Earnings per Share", Over("netIncome", "shares")},
	{"Assets Yield", Over("netIncome", "totalAssets")},
	{"Investments Yield", Over("netIncome", "investments")},
	{"Profit Margin", Over("grossProfit", "totalRevenue")},
	{"Book Price", Over("marketCap", "netIncome")},

	{"Short Term Debt Ratio", Over("shortLongTermDebt", "marketCap")},
	{"Income Ratio", Over("netIncome", "marketCap")},
	{"Asset Ratio", Over("totalAssets", "marketCap")},
	{"Stock Sale/Purchase Ratio", Over("salePurchaseOfStock", "marketCap")},
	{"Div Yield", Over("dividendsPaid", "marketCap")},
	{"EBIT ratio", Over("ebit", "marketCap")},
	{"Equity Ratio", Over("totalStockholderEquity", "marketCap")},
	{"Cash Ratio", Over("cash", "marketCap")},
	{"Borrowing Ratio", Over("netBorrowings", "marketCap")},
}

// BaseCatalog returns a new catalog holding the standard fundamental ratios.
// Each call returns an independent copy.
func BaseCatalog() *Catalog {
	catalog := &Catalog{}
	for _, entry := range baseRatios {
		catalog.Add(entry.name, entry.ratio)
	}
	return catalog
}

// Add inserts or replaces a ratio. A replaced ratio keeps its position.
func (catalog *Catalog) Add(name string, ratio Ratio) {
	if catalog.ratios == nil {
		catalog.ratios = make(map[string]Ratio)
	}
	if _, ok := catalog.ratios[name]; !ok {
		catalog.names = append(catalog.names, name)
	}
	catalog.ratios[name] = ratio
}

func (catalog *Catalog) Get(name string) (Ratio, bool) {
	ratio, ok := catalog.ratios[name]
	return ratio, ok
}

func (catalog *Catalog) Names() []string {
	names := make([]string, len(catalog.names))
	copy(names, catalog.names)
	return names
}

func (catalog *Catalog) Len() int {
	return len(catalog.names)
}

func (catalog *Catalog) Clone() *Catalog {
	clone := &Catalog{}
	for _, name := range catalog.names {
		clone.Add(name, catalog.ratios[name])
	}
	return clone
}

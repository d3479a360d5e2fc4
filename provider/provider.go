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
	"time"

	"github.com/penny-vault/pvfactor/data"
)

// HistoryStart is the first date requested when a full price history is
// downloaded.
var HistoryStart = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// Source retrieves raw payloads for the factor pipeline. Implementations
// return *data.ProviderError when the upstream responds unsuccessfully.
type Source interface {
	Fundamentals(ctx context.Context, symbol string) (*data.FundamentalsPayload, error)
	PriceHistory(ctx context.Context, symbol string, start, end time.Time, period string) ([]*data.Eod, error)
	Intraday(ctx context.Context, symbol string, interval string) ([]*data.IntradayBar, error)
	IndexConstituents(ctx context.Context, index string, asOf time.Time, country string) ([]*data.Constituent, error)
	ExchangeListing(ctx context.Context, code string) ([]*data.Listing, error)
}

// Directory lists what the provider offers; it is always answered live.
type Directory interface {
	Exchanges(ctx context.Context) ([]*data.Exchange, error)
	Search(ctx context.Context, query string) ([]*data.SearchResult, error)
}

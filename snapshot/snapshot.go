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

// Package snapshot persists the factor table of an asset after it has been
// computed.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gosimple/slug"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/factor"
	"github.com/penny-vault/pvfactor/frame"
)

// Store saves the factor table of one symbol. A failing store never
// invalidates the computed table; callers log the error and continue.
type Store interface {
	Save(ctx context.Context, symbol string, table *frame.Frame) error
}

// Multi saves to every store in order and joins their errors.
type Multi []Store

func (stores Multi) Save(ctx context.Context, symbol string, table *frame.Frame) error {
	var errs []error
	for _, store := range stores {
		if err := store.Save(ctx, symbol, table); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard is a Store that keeps nothing.
type Discard struct{}

func (Discard) Save(context.Context, string, *frame.Frame) error {
	return nil
}

// Observations flattens the float columns of a factor table into one
// observation per (date, factor); missing values are skipped.
func Observations(symbol string, table *frame.Frame) []*data.FactorObservation {
	tickers, _ := table.Text(factor.TickerColumn)

	observations := make([]*data.FactorObservation, 0, table.Len())
	for i, dt := range table.Index() {
		ticker := ""
		if tickers != nil {
			ticker = tickers[i]
		}

		for _, col := range table.Columns() {
			vals, ok := table.Float(col)
			if !ok || math.IsNaN(vals[i]) || math.IsInf(vals[i], 0) {
				continue
			}

			observations = append(observations, &data.FactorObservation{
				EventDate: dt.Format(data.DateLayout),
				Symbol:    symbol,
				Ticker:    ticker,
				Factor:    col,
				Value:     vals[i],
			})
		}
	}

	return observations
}

// CollectionFileName names the file holding a collection's factors computed
// on asOf, e.g. "s-p-500-20240105.parquet".
func CollectionFileName(collection string, asOf time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", slug.Make(collection), asOf.Format("20060102"), ext)
}

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
package factor

import (
	"math"
	"time"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
)

// PanelObservation is the value of a factor for one asset on one date.
type PanelObservation struct {
	Date  time.Time
	Asset string
	Value float64
}

// PanelData is the input of a cross-sectional factor analysis: the factor
// in long (date, asset) form and the wide pricing matrix, both forward-filled
// per asset.
type PanelData struct {
	Factor  []PanelObservation
	Pricing *frame.Frame
}

// Panel reshapes an aggregated factor table into PanelData for factorName.
func Panel(table *frame.Frame, factorName string) (*PanelData, error) {
	for _, col := range []string{TickerColumn, factorName, AdjustedCloseColumn} {
		if !table.Has(col) {
			return nil, &data.MissingFieldError{Field: col, Source: "factor table"}
		}
	}

	wideFactor, err := frame.Pivot(table, TickerColumn, factorName)
	if err != nil {
		return nil, err
	}
	wideFactor = wideFactor.FFill()

	pricing, err := frame.Pivot(table, TickerColumn, AdjustedCloseColumn)
	if err != nil {
		return nil, err
	}

	observations := make([]PanelObservation, 0, wideFactor.Len())
	assets := wideFactor.Columns()
	for i, dt := range wideFactor.Index() {
		for _, asset := range assets {
			vals, _ := wideFactor.Float(asset)
			if math.IsNaN(vals[i]) {
				continue
			}
			observations = append(observations, PanelObservation{Date: dt, Asset: asset, Value: vals[i]})
		}
	}

	return &PanelData{
		Factor:  observations,
		Pricing: pricing.FFill(),
	}, nil
}

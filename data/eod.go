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
	"time"
)

const DateLayout = "2006-01-02"

// Eod is a single end-of-day bar as returned by the provider's eod endpoint.
type Eod struct {
	Date          string  `json:"date" csv:"Date"`
	Open          float64 `json:"open" csv:"Open"`
	High          float64 `json:"high" csv:"High"`
	Low           float64 `json:"low" csv:"Low"`
	Close         float64 `json:"close" csv:"Close"`
	AdjustedClose float64 `json:"adjusted_close" csv:"Adjusted_close"`
	Volume        float64 `json:"volume" csv:"Volume"`
}

// IntradayBar is a single intraday bar.
type IntradayBar struct {
	Timestamp int64   `json:"timestamp" csv:"Timestamp"`
	GMTOffset int     `json:"gmtoffset" csv:"Gmtoffset"`
	Datetime  string  `json:"datetime" csv:"Datetime"`
	Open      float64 `json:"open" csv:"Open"`
	High      float64 `json:"high" csv:"High"`
	Low       float64 `json:"low" csv:"Low"`
	Close     float64 `json:"close" csv:"Close"`
	Volume    float64 `json:"volume" csv:"Volume"`
}

func (eod *Eod) EventDate() (time.Time, error) {
	return time.Parse(DateLayout, eod.Date)
}

// FilterEod returns the bars whose date falls in [start, end]. A zero start or
// end leaves that side open.
func FilterEod(quotes []*Eod, start, end time.Time) []*Eod {
	filtered := make([]*Eod, 0, len(quotes))
	for _, quote := range quotes {
		dt, err := quote.EventDate()
		if err != nil {
			continue
		}

		if !start.IsZero() && dt.Before(start) {
			continue
		}

		if !end.IsZero() && dt.After(end) {
			continue
		}

		filtered = append(filtered, quote)
	}

	return filtered
}

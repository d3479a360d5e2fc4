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

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
)

// Technical factor column names.
const (
	Vol1Y      = "1y vol"
	Vol1M      = "1m vol"
	MA1Y       = "1y ma"
	MA1M       = "1m ma"
	Momentum1Y = "1y1m momentum"
)

type VolOptions struct {
	// MeanAdjust subtracts the squared window mean from the second moment.
	MeanAdjust bool

	// ExcludeWeekends annualizes with 252 trading days instead of 365.
	ExcludeWeekends bool
}

// LogReturns returns ln(p[t] / p[t-1]); the first value is missing.
func LogReturns(prices frame.Series) frame.Series {
	prev := prices.Shift(1)
	vals := make([]float64, prices.Len())
	for i, p := range prices.Values {
		vals[i] = math.Log(p / prev.Values[i])
	}
	return frame.Series{Index: prices.Index, Values: vals}
}

// Volatility is the realized volatility of returns over a trailing window of
// days calendar days: sqrt(sum(r^2) - mean(r)^2 * count) scaled by
// sqrt(365/days), or sqrt(252/days) when weekends are excluded.
func Volatility(returns frame.Series, days int, opts VolOptions) frame.Series {
	dcf := 365.0 / float64(days)
	if opts.ExcludeWeekends {
		dcf = 252.0 / float64(days)
	}

	squared := returns.Map(func(r float64) float64 { return r * r })
	sumSq := squared.Rolling(days).Sum().Values

	adjust := make([]float64, returns.Len())
	if opts.MeanAdjust {
		mean := returns.Rolling(days).Mean().Values
		count := returns.Rolling(days).Count().Values
		for i := range adjust {
			adjust[i] = mean[i] * mean[i] * count[i]
		}
	}

	vals := make([]float64, returns.Len())
	for i := range vals {
		variance := sumSq[i] - adjust[i]
		// cancellation can leave a tiny negative residue for constant returns
		if variance < 0 && variance > -1e-12*math.Max(sumSq[i], 1) {
			variance = 0
		}
		vals[i] = math.Sqrt(variance) * math.Sqrt(dcf)
	}

	return frame.Series{Index: returns.Index, Values: vals}
}

// MovingAverage is the mean over a trailing window of days calendar days.
func MovingAverage(series frame.Series, days int) frame.Series {
	return series.Rolling(days).Mean()
}

// Momentum is ln(MA(short) / MA(long)).
func Momentum(series frame.Series, shortDays, longDays int) frame.Series {
	short := MovingAverage(series, shortDays)
	long := MovingAverage(series, longDays)

	vals := make([]float64, series.Len())
	for i := range vals {
		vals[i] = MomentumValue(short.Values[i], long.Values[i])
	}

	return frame.Series{Index: series.Index, Values: vals}
}

// MomentumValue is the log ratio of a short and a long moving average.
func MomentumValue(shortMA, longMA float64) float64 {
	return math.Log(shortMA / longMA)
}

// AddTechnicals returns a copy of a market-cap table with volatility, moving
// average and momentum columns computed from Adjusted_close.
func AddTechnicals(marketCap *frame.Frame) (*frame.Frame, error) {
	prices, ok := marketCap.Series(AdjustedCloseColumn)
	if !ok {
		return nil, &data.MissingFieldError{Field: AdjustedCloseColumn, Source: "market cap history"}
	}

	rets := LogReturns(prices)
	out := marketCap.Clone()
	out.SetFloat(Vol1Y, Volatility(rets, 365, VolOptions{MeanAdjust: true}).Values)
	out.SetFloat(Vol1M, Volatility(rets, 30, VolOptions{MeanAdjust: true}).Values)
	out.SetFloat(MA1Y, MovingAverage(prices, 365).Values)
	out.SetFloat(MA1M, MovingAverage(prices, 30).Values)
	out.SetFloat(Momentum1Y, Momentum(prices, 30, 365).Values)

	return out, nil
}

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
package frame

import (
	"math"
	"time"
)

// Series is a numeric column with its index.
type Series struct {
	Index  []time.Time
	Values []float64
}

func (s Series) Len() int {
	return len(s.Values)
}

// Shift returns the series lagged by n rows; the first n values are missing.
func (s Series) Shift(n int) Series {
	vals := make([]float64, len(s.Values))
	for i := range vals {
		if i-n < 0 || i-n >= len(s.Values) {
			vals[i] = math.NaN()
			continue
		}
		vals[i] = s.Values[i-n]
	}
	return Series{Index: s.Index, Values: vals}
}

// Map applies fn to every value.
func (s Series) Map(fn func(float64) float64) Series {
	vals := make([]float64, len(s.Values))
	for i, v := range s.Values {
		vals[i] = fn(v)
	}
	return Series{Index: s.Index, Values: vals}
}

// Window is a trailing calendar-duration window over a sorted series. The
// window for row t covers labels in (t - Span, t], so gaps in the series
// still span real time. Missing values are skipped; a window holding fewer
// than MinPeriods values yields NaN.
type Window struct {
	series     Series
	Span       time.Duration
	MinPeriods int
}

// Rolling opens a window of the given number of calendar days.
func (s Series) Rolling(days int) *Window {
	return &Window{
		series:     s,
		Span:       time.Duration(days) * 24 * time.Hour,
		MinPeriods: 1,
	}
}

// WithMinPeriods sets the number of values required for a result.
func (w *Window) WithMinPeriods(n int) *Window {
	w.MinPeriods = n
	return w
}

func (w *Window) apply(fn func(sum float64, count int) float64) []float64 {
	index := w.series.Index
	vals := w.series.Values
	out := make([]float64, len(vals))

	left := 0
	for i := range vals {
		lower := index[i].Add(-w.Span)
		for left < i && !index[left].After(lower) {
			left++
		}

		sum := 0.0
		count := 0
		for j := left; j <= i; j++ {
			if math.IsNaN(vals[j]) {
				continue
			}
			sum += vals[j]
			count++
		}

		if count == 0 || count < w.MinPeriods {
			out[i] = math.NaN()
			continue
		}

		out[i] = fn(sum, count)
	}

	return out
}

func (w *Window) Sum() Series {
	return Series{Index: w.series.Index, Values: w.apply(func(sum float64, _ int) float64 { return sum })}
}

func (w *Window) Mean() Series {
	return Series{Index: w.series.Index, Values: w.apply(func(sum float64, count int) float64 { return sum / float64(count) })}
}

// Count is the number of non-missing values in each window.
func (w *Window) Count() Series {
	return Series{Index: w.series.Index, Values: w.apply(func(_ float64, count int) float64 { return float64(count) })}
}

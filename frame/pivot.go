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
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrColumnNotFound = errors.New("column not found")
)

// Pivot reshapes a long table into a wide one: one row per distinct date, one
// numeric column per distinct value of the text column key holding the
// values of column value. Columns are sorted by key; when a (date, key) pair
// repeats the later row wins.
func Pivot(f *Frame, key, value string) (*Frame, error) {
	keys, ok := f.Text(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, key)
	}

	vals, ok := f.Float(value)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, value)
	}

	labels := f.Index()
	dates := make(map[time.Time]time.Time)
	names := make(map[string]bool)
	for i, dt := range labels {
		dates[dt.UTC()] = dt
		if keys[i] != "" {
			names[keys[i]] = true
		}
	}

	index := make([]time.Time, 0, len(dates))
	for _, dt := range dates {
		index = append(index, dt)
	}
	sort.Slice(index, func(a, b int) bool { return index[a].Before(index[b]) })

	pos := make(map[time.Time]int, len(index))
	for i, dt := range index {
		pos[dt.UTC()] = i
	}

	columns := make([]string, 0, len(names))
	for name := range names {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	wide := make(map[string][]float64, len(columns))
	for _, name := range columns {
		col := make([]float64, len(index))
		for i := range col {
			col[i] = math.NaN()
		}
		wide[name] = col
	}

	for i, dt := range labels {
		if keys[i] == "" {
			continue
		}
		wide[keys[i]][pos[dt.UTC()]] = vals[i]
	}

	out := New(index)
	for _, name := range columns {
		out.SetFloat(name, wide[name])
	}

	return out, nil
}

// RowSum adds the numeric columns of every row, skipping missing values. A
// row with no values sums to zero.
func (f *Frame) RowSum() Series {
	sums := make([]float64, f.Len())
	for _, col := range f.Columns() {
		vals, ok := f.Float(col)
		if !ok {
			continue
		}
		for i, v := range vals {
			if !math.IsNaN(v) {
				sums[i] += v
			}
		}
	}
	return Series{Index: f.Index(), Values: sums}
}

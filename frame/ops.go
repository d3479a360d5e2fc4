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
	"context"
	"math"
	"sort"
	"time"

	"github.com/rocketlaunchr/dataframe-go"
)

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SortIndex returns a copy sorted ascending by index. Rows with equal labels
// keep their relative order.
func (f *Frame) SortIndex() *Frame {
	out := f.Clone()
	out.df.Sort(context.Background(), []dataframe.SortKey{{Key: IndexColumn}}, dataframe.SortOptions{Stable: true})
	return out
}

// DropDuplicateIndex keeps the first row for every index label.
func (f *Frame) DropDuplicateIndex() *Frame {
	index := f.Index()
	seen := make(map[time.Time]bool, len(index))
	rows := make([]int, 0, len(index))
	for i, dt := range index {
		key := dt.UTC()
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, i)
	}

	return f.Take(rows)
}

// Slice returns the rows with start <= index <= end. A zero bound is open.
func (f *Frame) Slice(start, end time.Time) *Frame {
	index := f.Index()
	rows := make([]int, 0, len(index))
	for i, dt := range index {
		if !start.IsZero() && dt.Before(start) {
			continue
		}
		if !end.IsZero() && dt.After(end) {
			continue
		}
		rows = append(rows, i)
	}

	return f.Take(rows)
}

// Filter returns the rows for which keep returns true.
func (f *Frame) Filter(keep func(Row) bool) *Frame {
	rows := make([]int, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		if keep(f.Row(i)) {
			rows = append(rows, i)
		}
	}

	return f.Take(rows)
}

// FFill returns a copy where every missing value is replaced by the last
// non-missing value above it in the same column.
func (f *Frame) FFill() *Frame {
	out := New(f.Index())
	for _, col := range f.Columns() {
		if vals, ok := f.Float(col); ok {
			filled := make([]float64, len(vals))
			copy(filled, vals)
			FFillFloats(filled)
			out.SetFloat(col, filled)
			continue
		}

		texts, _ := f.Text(col)
		ffillTexts(texts)
		out.SetText(col, texts)
	}
	return out
}

// FFillFloats forward-fills NaN values in place.
func FFillFloats(vals []float64) {
	last := math.NaN()
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = last
			continue
		}
		last = v
	}
}

func ffillTexts(vals []string) {
	last := ""
	for i, v := range vals {
		if v == "" {
			vals[i] = last
			continue
		}
		last = v
	}
}

// Join outer-joins frames on their index. The result index is the sorted
// union of labels. When a column name appears in more than one frame the
// first one wins. Each input is expected to have a unique index; for
// duplicated labels the first row is used.
func Join(frames ...*Frame) *Frame {
	labels := make(map[time.Time]time.Time)
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, dt := range f.Index() {
			key := dt.UTC()
			if _, ok := labels[key]; !ok {
				labels[key] = dt
			}
		}
	}

	index := make([]time.Time, 0, len(labels))
	for _, dt := range labels {
		index = append(index, dt)
	}
	sort.Slice(index, func(a, b int) bool { return index[a].Before(index[b]) })

	pos := make(map[time.Time]int, len(index))
	for i, dt := range index {
		pos[dt.UTC()] = i
	}

	out := New(index)
	for _, f := range frames {
		if f == nil {
			continue
		}

		// map each output row to a source row, -1 when absent
		src := make([]int, len(index))
		for i := range src {
			src[i] = -1
		}
		rows := f.Index()
		for i := len(rows) - 1; i >= 0; i-- {
			src[pos[rows[i].UTC()]] = i
		}

		for _, col := range f.Columns() {
			if out.Has(col) {
				continue
			}
			gatherColumn(out, f, col, src)
		}
	}

	return out
}

// gatherColumn copies column col of f into out, taking row src[i] of f for
// row i of out. A negative source is a missing value.
func gatherColumn(out, f *Frame, col string, src []int) {
	if vals, ok := f.Float(col); ok {
		res := make([]float64, len(src))
		for i, s := range src {
			if s < 0 {
				res[i] = math.NaN()
			} else {
				res[i] = vals[s]
			}
		}
		out.SetFloat(col, res)
		return
	}

	vals, _ := f.Text(col)
	res := make([]string, len(src))
	for i, s := range src {
		if s >= 0 {
			res[i] = vals[s]
		}
	}
	out.SetText(col, res)
}

// Concat stacks frames vertically. Columns are the union in first-seen order
// and a column keeps the kind it had where it was first seen; cells a frame
// does not provide are missing.
func Concat(frames ...*Frame) *Frame {
	index := make([]time.Time, 0)
	kinds := make(map[string]bool)
	columns := make([]string, 0)
	for _, f := range frames {
		if f == nil {
			continue
		}
		index = append(index, f.Index()...)
		for _, col := range f.Columns() {
			if _, ok := kinds[col]; !ok {
				kinds[col] = f.IsText(col)
				columns = append(columns, col)
			}
		}
	}

	out := New(index)
	for _, col := range columns {
		if kinds[col] {
			res := make([]string, 0, len(index))
			for _, f := range frames {
				if f == nil {
					continue
				}
				vals, ok := f.Text(col)
				if !ok {
					vals = make([]string, f.Len())
				}
				res = append(res, vals...)
			}
			out.SetText(col, res)
			continue
		}

		res := make([]float64, 0, len(index))
		for _, f := range frames {
			if f == nil {
				continue
			}
			vals, ok := f.Float(col)
			if !ok {
				vals = make([]float64, f.Len())
				for i := range vals {
					vals[i] = math.NaN()
				}
			}
			res = append(res, vals...)
		}
		out.SetFloat(col, res)
	}

	return out
}

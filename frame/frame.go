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

// Package frame implements the date-indexed table used throughout the
// factor pipeline on top of dataframe-go. The first series of every frame is
// the date index; the remaining series are either float64 columns, where NaN
// is the missing value, or string columns, where "" is the missing value.
// Columns keep the order in which they were added.
package frame

import (
	"fmt"
	"math"
	"time"

	"github.com/rocketlaunchr/dataframe-go"
)

// IndexColumn names the date index series and the first CSV column.
const IndexColumn = "date"

const dateLayout = "2006-01-02"

type Frame struct {
	df *dataframe.DataFrame
}

func newIndexSeries(index []time.Time) *dataframe.SeriesTime {
	dates := dataframe.NewSeriesTime(IndexColumn, nil, index)
	dates.SetValueToStringFormatter(formatDate)
	return dates
}

func newFloatSeries(name string, vals []float64) *dataframe.SeriesFloat64 {
	series := dataframe.NewSeriesFloat64(name, nil, vals)
	series.SetValueToStringFormatter(formatFloatValue)
	return series
}

// newTextSeries stores "" as nil so that missing text exports like a
// missing number.
func newTextSeries(name string, vals []string) *dataframe.SeriesString {
	cells := make([]interface{}, len(vals))
	for i, v := range vals {
		if v != "" {
			cells[i] = v
		}
	}
	return dataframe.NewSeriesString(name, &dataframe.SeriesInit{Capacity: len(vals)}, cells...)
}

func formatDate(v interface{}) string {
	if dt, ok := v.(time.Time); ok {
		return dt.Format(dateLayout)
	}
	return ""
}

func formatFloatValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return FormatFloat(f)
	}
	return ""
}

// New creates an empty frame over a copy of index.
func New(index []time.Time) *Frame {
	if index == nil {
		index = []time.Time{}
	}
	return &Frame{df: dataframe.NewDataFrame(newIndexSeries(index))}
}

// Empty returns a frame with no rows and no columns.
func Empty() *Frame {
	return New(nil)
}

func (f *Frame) Len() int {
	return f.df.NRows()
}

func (f *Frame) dates() *dataframe.SeriesTime {
	return f.df.Series[0].(*dataframe.SeriesTime)
}

func (f *Frame) date(i int) time.Time {
	if dt := f.dates().Values[i]; dt != nil {
		return *dt
	}
	return time.Time{}
}

// Index returns a copy of the row labels.
func (f *Frame) Index() []time.Time {
	vals := f.dates().Values
	index := make([]time.Time, len(vals))
	for i, dt := range vals {
		if dt != nil {
			index[i] = *dt
		}
	}
	return index
}

// Columns returns the column names in order, without the index.
func (f *Frame) Columns() []string {
	names := f.df.Names()
	return names[1:]
}

// column returns the named series and its position, or -1 when absent.
func (f *Frame) column(name string) (dataframe.Series, int) {
	for i := 1; i < len(f.df.Series); i++ {
		if f.df.Series[i].Name() == name {
			return f.df.Series[i], i
		}
	}
	return nil, -1
}

func (f *Frame) floatSeries(name string) (*dataframe.SeriesFloat64, bool) {
	series, _ := f.column(name)
	floats, ok := series.(*dataframe.SeriesFloat64)
	return floats, ok
}

func (f *Frame) textSeries(name string) (*dataframe.SeriesString, bool) {
	series, _ := f.column(name)
	texts, ok := series.(*dataframe.SeriesString)
	return texts, ok
}

func (f *Frame) Has(name string) bool {
	_, pos := f.column(name)
	return pos > 0
}

// IsText reports whether name is a text column.
func (f *Frame) IsText(name string) bool {
	_, ok := f.textSeries(name)
	return ok
}

// set adds series as a new column or replaces the column of the same name in
// place.
func (f *Frame) set(series dataframe.Series) {
	name := series.Name()
	if name == IndexColumn {
		panic(fmt.Sprintf("frame: column name %q is reserved for the index", IndexColumn))
	}

	if series.NRows() != f.Len() {
		panic(fmt.Sprintf("frame: column %q has %d values for %d rows", name, series.NRows(), f.Len()))
	}

	if _, pos := f.column(name); pos > 0 {
		f.df.Series[pos] = series
		return
	}

	if err := f.df.AddSeries(series, nil); err != nil {
		panic(err)
	}
}

// SetFloat adds or replaces a numeric column. vals is copied.
func (f *Frame) SetFloat(name string, vals []float64) {
	f.set(newFloatSeries(name, vals))
}

// SetText adds or replaces a text column. vals is copied.
func (f *Frame) SetText(name string, vals []string) {
	f.set(newTextSeries(name, vals))
}

// Broadcast sets a text column holding value on every row.
func (f *Frame) Broadcast(name, value string) {
	vals := make([]string, f.Len())
	for i := range vals {
		vals[i] = value
	}
	f.SetText(name, vals)
}

// Float returns the values of a numeric column. The slice is shared with the
// frame and must not be modified.
func (f *Frame) Float(name string) ([]float64, bool) {
	series, ok := f.floatSeries(name)
	if !ok {
		return nil, false
	}
	return series.Values, true
}

// Text returns a copy of the values of a text column.
func (f *Frame) Text(name string) ([]string, bool) {
	series, ok := f.textSeries(name)
	if !ok {
		return nil, false
	}
	return textValues(series), true
}

func textValues(series *dataframe.SeriesString) []string {
	vals := make([]string, series.NRows())
	for i := range vals {
		if v, ok := series.Value(i).(string); ok {
			vals[i] = v
		}
	}
	return vals
}

// Series returns a numeric column together with the index.
func (f *Frame) Series(name string) (Series, bool) {
	vals, ok := f.Float(name)
	if !ok {
		return Series{}, false
	}
	return Series{Index: f.Index(), Values: vals}, true
}

// DataFrame exposes the underlying dataframe. Its first series is the
// index.
func (f *Frame) DataFrame() *dataframe.DataFrame {
	return f.df
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	return &Frame{df: f.df.Copy()}
}

// Select returns a new frame with the named columns, in the given order.
// Unknown names are ignored.
func (f *Frame) Select(names ...string) *Frame {
	out := &Frame{df: dataframe.NewDataFrame(f.dates().Copy())}
	for _, name := range names {
		if series, pos := f.column(name); pos > 0 {
			out.set(series.Copy())
		}
	}
	return out
}

// Drop returns a new frame without the named columns.
func (f *Frame) Drop(names ...string) *Frame {
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}

	keep := make([]string, 0)
	for _, col := range f.Columns() {
		if !skip[col] {
			keep = append(keep, col)
		}
	}

	return f.Select(keep...)
}

// Take returns a new frame made of the given row positions, in order.
func (f *Frame) Take(rows []int) *Frame {
	index := make([]time.Time, len(rows))
	for i, r := range rows {
		index[i] = f.date(r)
	}

	out := New(index)
	for _, series := range f.df.Series[1:] {
		switch s := series.(type) {
		case *dataframe.SeriesFloat64:
			vals := make([]float64, len(rows))
			for i, r := range rows {
				vals[i] = s.Values[r]
			}
			out.set(newFloatSeries(s.Name(), vals))
		case *dataframe.SeriesString:
			cells := make([]interface{}, len(rows))
			for i, r := range rows {
				cells[i] = s.Value(r)
			}
			out.set(dataframe.NewSeriesString(s.Name(), &dataframe.SeriesInit{Capacity: len(rows)}, cells...))
		}
	}

	return out
}

// Row is a read-only view of one row.
type Row struct {
	Date  time.Time
	frame *Frame
	pos   int
}

func (f *Frame) Row(i int) Row {
	return Row{Date: f.date(i), frame: f, pos: i}
}

// Float returns the value of a numeric column, NaN when the column is absent.
func (r Row) Float(name string) float64 {
	series, ok := r.frame.floatSeries(name)
	if !ok {
		return math.NaN()
	}
	return series.Values[r.pos]
}

// Text returns the value of a text column, "" when the column is absent.
func (r Row) Text(name string) string {
	series, ok := r.frame.textSeries(name)
	if !ok {
		return ""
	}
	v, _ := series.Value(r.pos).(string)
	return v
}

func (r Row) Position() int {
	return r.pos
}

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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/rocketlaunchr/dataframe-go/imports"
)

var (
	ErrNoHeader = errors.New("csv has no header row")
	ErrNoIndex  = errors.New("csv has no date column")
)

// FormatFloat renders a value the way it is written to CSV: NaN is empty and
// infinities are inf/-inf.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// WriteCSV writes a header row followed by one line per row. The first column
// is the index formatted as YYYY-MM-DD and missing cells are empty.
func (f *Frame) WriteCSV(ctx context.Context, w io.Writer) error {
	missing := ""
	return exports.ExportToCSV(ctx, w, f.df, exports.CSVExportOptions{
		NullString: &missing,
		Separator:  ',',
	})
}

// ReadCSV parses a table written by WriteCSV. A column is numeric when every
// non-empty cell parses as a float, otherwise it is text.
func ReadCSV(ctx context.Context, r io.Reader) (*Frame, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	missing := ""
	loaded, err := imports.LoadFromCSV(ctx, bytes.NewReader(content), imports.CSVLoadOptions{
		Comma:    ',',
		NilValue: &missing,
		DictateDataType: map[string]interface{}{
			IndexColumn: imports.Converter{
				ConcreteType: time.Time{},
				ConverterFunc: func(in interface{}) (interface{}, error) {
					return parseDate(in.(string))
				},
			},
		},
	})
	if errors.Is(err, dataframe.ErrNoRows) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}

	dates, ok := loaded.Series[0].(*dataframe.SeriesTime)
	if !ok || dates.Name() != IndexColumn {
		return nil, ErrNoIndex
	}

	for i, dt := range dates.Values {
		if dt == nil {
			return nil, fmt.Errorf("row %d: %w", i+1, ErrNoIndex)
		}
	}
	dates.SetValueToStringFormatter(formatDate)

	out := &Frame{df: dataframe.NewDataFrame(dates)}
	for _, series := range loaded.Series[1:] {
		texts, ok := series.(*dataframe.SeriesString)
		if !ok {
			continue
		}

		// a conversion error on any cell keeps the column as text
		floats, err := texts.ToSeriesFloat64(ctx, false)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			out.set(texts)
			continue
		}

		floats.SetValueToStringFormatter(formatFloatValue)
		out.set(floats)
	}

	return out, nil
}

func parseDate(s string) (time.Time, error) {
	if dt, err := time.Parse(dateLayout, s); err == nil {
		return dt, nil
	}
	return time.Parse(time.RFC3339, s)
}

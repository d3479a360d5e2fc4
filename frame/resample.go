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
	"strings"
	"time"
)

var (
	ErrUnknownRule = errors.New("unknown resample rule")
)

// Rule identifies a calendar bucket. Buckets are labelled by their last day.
type Rule string

const (
	Daily     Rule = "D"
	Weekly    Rule = "W"
	Monthly   Rule = "M"
	Quarterly Rule = "Q"
	Annual    Rule = "A"
)

// ParseRule accepts the common spellings of the supported rules.
func ParseRule(s string) (Rule, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "D":
		return Daily, nil
	case "W", "W-SUN":
		return Weekly, nil
	case "M", "ME":
		return Monthly, nil
	case "Q", "QE", "Q-DEC":
		return Quarterly, nil
	case "A", "Y", "YE", "A-DEC":
		return Annual, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRule, s)
	}
}

// BucketEnd returns the label of the bucket containing t.
func (rule Rule) BucketEnd(t time.Time) time.Time {
	d := Day(t)
	switch rule {
	case Weekly:
		offset := (7 - int(d.Weekday())) % 7
		return d.AddDate(0, 0, offset)
	case Monthly:
		return time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, d.Location()).AddDate(0, 0, -1)
	case Quarterly:
		qEndMonth := ((int(d.Month())-1)/3+1)*3 + 1
		return time.Date(d.Year(), time.Month(qEndMonth), 1, 0, 0, 0, 0, d.Location()).AddDate(0, 0, -1)
	case Annual:
		return time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, d.Location())
	default:
		return d
	}
}

// ResampleDaily upsamples to one row per calendar day between the first and
// last label. Each day takes the row with the latest label on or before it.
// The index must be sorted.
func (f *Frame) ResampleDaily() *Frame {
	if f.Len() == 0 {
		return f.Clone()
	}

	labels := f.Index()
	first := Day(labels[0])
	last := Day(labels[len(labels)-1])

	index := make([]time.Time, 0)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		index = append(index, d)
	}

	src := make([]int, len(index))
	j := -1
	for i, d := range index {
		for j+1 < len(labels) && !Day(labels[j+1]).After(d) {
			j++
		}
		src[i] = j
	}

	out := New(index)
	for _, col := range f.Columns() {
		gatherColumn(out, f, col, src)
	}
	return out
}

// ResampleLast downsamples into rule buckets keeping, per column, the last
// non-missing value in each bucket. Every bucket between the first and last
// is present; empty buckets are all missing.
func (f *Frame) ResampleLast(rule Rule) *Frame {
	if f.Len() == 0 {
		return f.Clone()
	}

	sorted := f.SortIndex()
	labels := sorted.Index()
	first := rule.BucketEnd(labels[0])
	last := rule.BucketEnd(labels[len(labels)-1])

	index := make([]time.Time, 0)
	for b := first; !b.After(last); b = rule.BucketEnd(b.AddDate(0, 0, 1)) {
		index = append(index, b)
	}

	bucketOf := make([]int, len(labels))
	b := 0
	for i, dt := range labels {
		end := rule.BucketEnd(dt)
		for !index[b].Equal(end) {
			b++
		}
		bucketOf[i] = b
	}

	out := New(index)
	for _, col := range sorted.Columns() {
		if vals, ok := sorted.Float(col); ok {
			res := make([]float64, len(index))
			for i := range res {
				res[i] = math.NaN()
			}
			for i, v := range vals {
				if !math.IsNaN(v) {
					res[bucketOf[i]] = v
				}
			}
			out.SetFloat(col, res)
			continue
		}

		vals, _ := sorted.Text(col)
		res := make([]string, len(index))
		for i, v := range vals {
			if v != "" {
				res[bucketOf[i]] = v
			}
		}
		out.SetText(col, res)
	}

	return out
}

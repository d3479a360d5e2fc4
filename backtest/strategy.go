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

// Package backtest evaluates a per-row trading decision against the realized
// target of a prepared table.
package backtest

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
)

// TargetColumn holds the realized return a decision is applied to.
const TargetColumn = "__target_0"

// DecisionFunc returns the position taken on a row: positive is long,
// negative is short and zero is no trade.
type DecisionFunc func(row frame.Row, args any) float64

type Strategy struct {
	Decide DecisionFunc
	Table  *frame.Frame
	Args   any
}

// Report holds the statistics of a backtest run. Period returns are grouped
// by the table's index date.
type Report struct {
	Decisions     []float64
	PnLs          []float64
	PeriodReturns frame.Series

	AvgTradePnL float64
	AvgPnL      float64
	PnLStd      float64
	SharpeRatio float64
	NumTrades   float64
}

func New(decide DecisionFunc, table *frame.Frame, args any) *Strategy {
	return &Strategy{
		Decide: decide,
		Table:  table,
		Args:   args,
	}
}

// Run applies the decision function to every row. The pnl of a row is its
// target times its decision; the return of a date is the sum of its pnls
// divided by max(1, |sum of its decisions|).
func (strategy *Strategy) Run() (*Report, error) {
	target, ok := strategy.Table.Float(TargetColumn)
	if !ok {
		return nil, &data.MissingFieldError{Field: TargetColumn, Source: "backtest table"}
	}

	n := strategy.Table.Len()
	report := &Report{
		Decisions: make([]float64, n),
		PnLs:      make([]float64, n),
	}

	var totalPnL, totalExposure float64
	pnlByDate := make(map[time.Time]float64)
	exposureByDate := make(map[time.Time]float64)
	dates := make([]time.Time, 0)

	index := strategy.Table.Index()
	for i := 0; i < n; i++ {
		decision := strategy.Decide(strategy.Table.Row(i), strategy.Args)
		pnl := target[i] * decision

		report.Decisions[i] = decision
		report.PnLs[i] = pnl

		key := index[i].UTC()
		if _, seen := exposureByDate[key]; !seen {
			dates = append(dates, key)
			exposureByDate[key] = 0
			pnlByDate[key] = 0
		}

		if !math.IsNaN(decision) {
			totalExposure += math.Abs(decision)
			exposureByDate[key] += decision
		}

		if !math.IsNaN(pnl) {
			totalPnL += pnl
			pnlByDate[key] += pnl
		}
	}

	sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })

	returns := make([]float64, len(dates))
	for i, dt := range dates {
		returns[i] = pnlByDate[dt] / math.Max(1, math.Abs(exposureByDate[dt]))
	}

	report.PeriodReturns = frame.Series{Index: dates, Values: returns}
	report.NumTrades = totalExposure
	report.AvgTradePnL = totalPnL / totalExposure
	report.AvgPnL = mean(returns)
	report.PnLStd = sampleStd(returns)
	report.SharpeRatio = report.AvgPnL / report.PnLStd

	return report, nil
}

func (report *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-30s%v\n", "Portfolio Avg Return:", report.AvgPnL)
	fmt.Fprintf(&sb, "%-30s%v\n", "Trade Avg Return:", report.AvgTradePnL)
	fmt.Fprintf(&sb, "%-30s%v\n", "Portfolio Sharpe Ratio:", report.SharpeRatio)
	fmt.Fprintf(&sb, "%-30s%v\n", "# of Trades:", report.NumTrades)
	return sb.String()
}

func mean(vals []float64) float64 {
	var sum float64
	count := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// sampleStd is the standard deviation with one degree of freedom removed.
func sampleStd(vals []float64) float64 {
	return std(vals, 1)
}

func std(vals []float64, ddof int) float64 {
	avg := mean(vals)
	var sum float64
	count := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += (v - avg) * (v - avg)
		count++
	}
	if count-ddof <= 0 {
		return math.NaN()
	}
	return math.Sqrt(sum / float64(count-ddof))
}

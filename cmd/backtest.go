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
package cmd

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/pvfactor/backtest"
	"github.com/penny-vault/pvfactor/frame"
)

var (
	backtestFactor    string
	backtestThreshold float64
	backtestShort     bool
)

type thresholdArgs struct {
	Column    string
	Threshold float64
	Short     bool
}

// thresholdDecision goes long when the factor exceeds the threshold and,
// if enabled, short when it is below the negated threshold.
func thresholdDecision(row frame.Row, args any) float64 {
	opts := args.(thresholdArgs)

	value := row.Float(opts.Column)
	switch {
	case math.IsNaN(value):
		return 0
	case value > opts.Threshold:
		return 1
	case opts.Short && value < -opts.Threshold:
		return -1
	default:
		return 0
	}
}

var backtestCmd = &cobra.Command{
	Use:   "backtest FILE.csv",
	Short: "Backtest a threshold rule on a factor table",
	Long: `Backtest a threshold rule on an aggregated factor table. The table must
contain a ` + backtest.TargetColumn + ` column holding the return realized
after each row; the rule trades the column named by --factor.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()

		fh, err := os.Open(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not open factor table")
		}
		defer fh.Close()

		table, err := frame.ReadCSV(ctx, fh)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not parse factor table")
		}

		if !table.Has(backtestFactor) {
			log.Fatal().Str("Factor", backtestFactor).Msg("factor is not a column of the table")
		}

		strategy := backtest.New(thresholdDecision, table, thresholdArgs{
			Column:    backtestFactor,
			Threshold: backtestThreshold,
			Short:     backtestShort,
		})

		report, err := strategy.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("backtest failed")
		}

		log.Info().Float64("Sharpe", backtest.SharpeRatio(report.PeriodReturns.Values, 0)).Int("NumPeriods", report.PeriodReturns.Len()).Msg("backtest complete")

		title := lipgloss.NewStyle().Bold(true).Render("BACKTEST " + strings.ToUpper(backtestFactor))
		fmt.Println(
			lipgloss.NewStyle().
				Width(60).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(1, 2).
				Render(title + "\n\n" + strings.TrimRight(report.String(), "\n")),
		)
	},
}

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&backtestFactor, "factor", "f", "Income Ratio", "factor column the rule trades on")
	backtestCmd.Flags().Float64VarP(&backtestThreshold, "threshold", "t", 0, "go long above this value")
	backtestCmd.Flags().BoolVar(&backtestShort, "short", false, "go short below the negated threshold")
}

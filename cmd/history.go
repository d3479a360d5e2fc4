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
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/equity"
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/provider"
)

var (
	historyStart    string
	historyEnd      string
	historyMerge    bool
	historyInterval string
)

var historyCmd = &cobra.Command{
	Use:   "history TICKER.EXCHANGE",
	Short: "Print the price history of a stock as CSV",
	Long: `Print the end-of-day price history of a stock as CSV. With --merge the
daily market capitalization is joined with the financial statements instead;
with --interval intraday bars are printed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()

		ticker, exchange, _, err := parseHolding(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse symbol")
		}

		start, end := provider.HistoryStart, time.Now()
		if historyStart != "" {
			if start, err = time.Parse(data.DateLayout, historyStart); err != nil {
				log.Fatal().Err(err).Str("Start", historyStart).Msg("could not parse start date")
			}
		}
		if historyEnd != "" {
			if end, err = time.Parse(data.DateLayout, historyEnd); err != nil {
				log.Fatal().Err(err).Str("End", historyEnd).Msg("could not parse end date")
			}
		}

		stock := equity.NewStock(ticker, exchange, newSource())

		switch {
		case historyInterval != "":
			bars, err := stock.Intraday(ctx, historyInterval, false)
			if err != nil {
				log.Fatal().Err(err).Str("Symbol", stock.Symbol()).Msg("could not load intraday prices")
			}
			if err := gocsv.Marshal(&bars, os.Stdout); err != nil {
				log.Fatal().Err(err).Msg("could not write intraday prices")
			}

		case historyMerge:
			filingType, err := financials.ParseFilingType(viper.GetString("factors.filing_type"))
			if err != nil {
				log.Fatal().Err(err).Msg("invalid filing type")
			}

			merged, err := stock.MergeHistory(ctx, start, end, filingType)
			if err != nil {
				log.Fatal().Err(err).Str("Symbol", stock.Symbol()).Msg("could not merge history")
			}
			if err := merged.WriteCSV(ctx, os.Stdout); err != nil {
				log.Fatal().Err(err).Msg("could not write merged history")
			}

		default:
			quotes, err := stock.History(ctx, start, end, false)
			if err != nil {
				log.Fatal().Err(err).Str("Symbol", stock.Symbol()).Msg("could not load price history")
			}
			if len(quotes) == 0 {
				fmt.Fprintln(os.Stderr, "no prices in range")
				return
			}
			if err := gocsv.Marshal(&quotes, os.Stdout); err != nil {
				log.Fatal().Err(err).Msg("could not write price history")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyStart, "start", "", "first date in YYYY-MM-DD format")
	historyCmd.Flags().StringVar(&historyEnd, "end", "", "last date in YYYY-MM-DD format (default today)")
	historyCmd.Flags().BoolVar(&historyMerge, "merge", false, "join market cap with the financial statements")
	historyCmd.Flags().StringVar(&historyInterval, "interval", "", "print intraday bars at this interval (1m, 5m or 1h)")
}

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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvfactor/backblaze"
	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/figi"
	"github.com/penny-vault/pvfactor/healthcheck"
	"github.com/penny-vault/pvfactor/library"
	"github.com/penny-vault/pvfactor/snapshot"
	"github.com/penny-vault/pvfactor/universe"
)

var (
	outDir        string
	writeParquet  bool
	venues        []string
	securityTypes []string
	indexAsOf     string
	indexCountry  string
	refresh       bool
)

var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "Compute factor tables for a universe of assets",
}

var factorsPortfolioCmd = &cobra.Command{
	Use:   "portfolio TICKER.EXCHANGE[:QUANTITY] ...",
	Short: "Compute factors for a list of holdings",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := mustBatchOptions()

		portfolio := universe.NewPortfolio(opts)
		for _, arg := range args {
			ticker, exchange, quantity, err := parseHolding(arg)
			if err != nil {
				log.Fatal().Err(err).Str("Holding", arg).Msg("could not parse holding")
			}
			portfolio.AddAsset(ticker, exchange, quantity, "")
		}

		runCollection(newContext(), portfolio)
	},
}

var factorsExchangeCmd = &cobra.Command{
	Use:   "exchange CODE",
	Short: "Compute factors for every listing of an exchange",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := mustBatchOptions()

		exchange := universe.NewExchange(args[0], opts)
		exchange.Venues = venues
		if len(securityTypes) > 0 {
			exchange.Types = securityTypes
		}

		runCollection(newContext(), exchange)
	},
}

var factorsIndexCmd = &cobra.Command{
	Use:   "index SYMBOL",
	Short: "Compute factors for the members of an index",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := mustBatchOptions()

		asOf := time.Now()
		if indexAsOf != "" {
			var err error
			asOf, err = time.Parse(data.DateLayout, indexAsOf)
			if err != nil {
				log.Fatal().Err(err).Str("AsOf", indexAsOf).Msg("could not parse as-of date")
			}
		}

		runCollection(newContext(), universe.NewIndex(args[0], asOf, indexCountry, opts))
	},
}

func init() {
	rootCmd.AddCommand(factorsCmd)
	factorsCmd.AddCommand(factorsPortfolioCmd)
	factorsCmd.AddCommand(factorsExchangeCmd)
	factorsCmd.AddCommand(factorsIndexCmd)

	factorsCmd.PersistentFlags().StringVarP(&outDir, "out", "o", ".", "directory the aggregated factor table is written to")
	factorsCmd.PersistentFlags().BoolVar(&writeParquet, "parquet", false, "also write the aggregated table as parquet")
	factorsCmd.PersistentFlags().BoolVar(&refresh, "refresh", false, "reload fundamentals even when already loaded")

	factorsCmd.PersistentFlags().Int("concurrency", 4, "number of assets computed at once")
	if err := viper.BindPFlag("batch.concurrency", factorsCmd.PersistentFlags().Lookup("concurrency")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for concurrency failed")
	}

	factorsCmd.PersistentFlags().String("filing-type", "quarterly", "financial statements to use (quarterly or annual)")
	if err := viper.BindPFlag("factors.filing_type", factorsCmd.PersistentFlags().Lookup("filing-type")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for filing-type failed")
	}

	factorsCmd.PersistentFlags().Bool("no-snapshot", false, "do not write a csv snapshot of each asset")
	if err := viper.BindPFlag("snapshot.disabled", factorsCmd.PersistentFlags().Lookup("no-snapshot")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for no-snapshot failed")
	}

	factorsCmd.PersistentFlags().String("resample", "", "keep the last row per period (W, M, Q or A)")
	if err := viper.BindPFlag("factors.resample", factorsCmd.PersistentFlags().Lookup("resample")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for resample failed")
	}

	factorsExchangeCmd.Flags().StringSliceVar(&venues, "venues", nil, "only keep listings traded on these venues")
	factorsExchangeCmd.Flags().StringSliceVar(&securityTypes, "types", nil, "security types to keep (default Common Stock)")

	factorsIndexCmd.Flags().StringVar(&indexAsOf, "as-of", "", "membership date in YYYY-MM-DD format (default today)")
	factorsIndexCmd.Flags().StringVar(&indexCountry, "country", "US", "exchange the index members are priced on")
}

func mustBatchOptions() universe.Options {
	opts, err := batchOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	opts.Refresh = refresh
	return opts
}

// parseHolding splits AAPL.US:10 into its ticker, exchange and quantity.
func parseHolding(arg string) (ticker, exchange string, quantity float64, err error) {
	symbol, qty, hasQty := strings.Cut(arg, ":")

	quantity = 1
	if hasQty {
		quantity, err = strconv.ParseFloat(qty, 64)
		if err != nil {
			return "", "", 0, err
		}
	}

	ticker, exchange, ok := strings.Cut(symbol, ".")
	if !ok || ticker == "" || exchange == "" {
		return "", "", 0, fmt.Errorf("holding %q is not in the form TICKER.EXCHANGE", arg)
	}

	return ticker, exchange, quantity, nil
}

func runCollection(ctx context.Context, collection universe.Collection) {
	checkID := viper.GetString("healthchecks.id")
	start := time.Now()

	if err := healthcheck.Ping(ctx, checkID, healthcheck.Start, collection.Name()); err != nil {
		log.Warn().Err(err).Msg("could not signal run start")
	}

	results, err := collection.Results(ctx)
	if err != nil {
		if pingErr := healthcheck.Ping(ctx, checkID, healthcheck.Fail, err.Error()); pingErr != nil {
			log.Warn().Err(pingErr).Msg("could not signal run failure")
		}
		log.Fatal().Err(err).Str("Collection", collection.Name()).Msg("factor computation aborted")
	}

	summary := universe.Summarize(collection.Name(), start, results)
	table := universe.FactorsTable(results)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("Dir", outDir).Msg("could not create output directory")
	}

	csvFN := filepath.Join(outDir, snapshot.CollectionFileName(collection.Name(), start, "csv"))
	fh, err := os.Create(csvFN)
	if err != nil {
		log.Fatal().Err(err).Str("FileName", csvFN).Msg("could not create output file")
	}
	if err := table.WriteCSV(ctx, fh); err != nil {
		log.Fatal().Err(err).Str("FileName", csvFN).Msg("could not write factor table")
	}
	fh.Close()
	log.Info().Str("FileName", csvFN).Int("NumRows", table.Len()).Msg("saved factor table")

	if writeParquet {
		saveParquet(ctx, collection.Name(), start, results)
	}

	if dbURL := viper.GetString("db.url"); dbURL != "" {
		saveToLibrary(ctx, dbURL, results, summary)
	}

	report := fmt.Sprintf("%d assets, %d succeeded, %d failed, %d rows",
		summary.NumAssets, summary.NumSucceeded, summary.NumFailed, summary.NumObservations)
	if err := healthcheck.Ping(ctx, checkID, healthcheck.Success, report); err != nil {
		log.Warn().Err(err).Msg("could not signal run success")
	}

	printSummary(summary)
}

func saveParquet(ctx context.Context, collection string, start time.Time, results []*universe.Result) {
	observations := make([]*data.FactorObservation, 0)
	for _, result := range results {
		if result.Succeeded() {
			observations = append(observations, snapshot.Observations(result.Asset.Symbol(), result.Table)...)
		}
	}

	fn := filepath.Join(outDir, snapshot.CollectionFileName(collection, start, "parquet"))
	if err := snapshot.WriteParquet(ctx, observations, fn); err != nil {
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not write parquet file")
	}
	log.Info().Str("FileName", fn).Int("NumObservations", len(observations)).Msg("saved parquet file")

	if bucket := viper.GetString("backblaze.bucket"); bucket != "" {
		if err := backblaze.Upload(ctx, fn, bucket, viper.GetString("backblaze.prefix")); err != nil {
			log.Error().Err(err).Str("Bucket", bucket).Msg("could not upload parquet file")
		}
	}
}

func saveToLibrary(ctx context.Context, dbURL string, results []*universe.Result, summary *data.RunSummary) {
	myLibrary, err := library.NewFromDB(ctx, dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to factor library")
	}
	defer myLibrary.Close()

	assets := make([]*data.Asset, 0, len(results))
	for _, result := range results {
		if result.Succeeded() {
			assets = append(assets, result.Asset)
		}
	}

	if conn, err := myLibrary.Pool.Acquire(ctx); err == nil {
		figi.LoadCacheFromDB(ctx, conn)
		conn.Release()
	} else {
		log.Warn().Err(err).Msg("could not load figi cache from library")
	}

	if viper.GetString("openfigi.apikey") != "" {
		figi.Enrich(ctx, assets...)
	}

	if err := myLibrary.SaveResults(ctx, results, summary); err != nil {
		log.Fatal().Err(err).Msg("could not save factors to library")
	}

	log.Info().Str("Library", myLibrary.Name).Int("NumAssets", len(assets)).Msg("saved factors to library")
}

func printSummary(summary *data.RunSummary) {
	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\nRun: %s\nAssets: %s\nSucceeded: %s\nFailed: %s\nRows: %s\nElapsed: %s",
		lipgloss.NewStyle().Bold(true).Render(strings.ToUpper(summary.Collection)),
		keyword(summary.ID.String()),
		keyword(strconv.Itoa(summary.NumAssets)),
		keyword(strconv.Itoa(summary.NumSucceeded)),
		keyword(strconv.Itoa(summary.NumFailed)),
		keyword(strconv.Itoa(summary.NumObservations)),
		keyword(summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond).String()),
	)

	fmt.Println(
		lipgloss.NewStyle().
			Width(60).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Render(sb.String()),
	)
}

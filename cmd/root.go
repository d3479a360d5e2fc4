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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvfactor/provider"
)

// defaultSnapshotDir receives a csv of every asset's factor table.
const defaultSnapshotDir = "merged"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pvfactor",
	Short: "pvfactor computes fundamental and technical factor tables for equities",
	Long: `pvfactor is a command line utility for building factor tables from
fundamental filings and end-of-day prices published by EOD Historical Data.

For every asset in a universe (a portfolio, the listings of an exchange, or
the members of an index) pvfactor downloads the quarterly or annual financial
statements, joins them with a daily market capitalization history, and
computes a catalog of financial ratios alongside volatility and momentum
indicators. The resulting tables can be written as CSV or parquet snapshots,
uploaded to backblaze, stored in a PostgreSQL factor library, and fed to a
simple long/short backtest.

Provider responses are cached on disk so that once a universe has been
downloaded it can be recomputed offline.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvfactor.toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for log-level failed")
	}

	rootCmd.PersistentFlags().String("dbUrl", "", "database connection string")
	if err := viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("dbUrl")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for dbUrl failed")
	}

	rootCmd.PersistentFlags().Bool("live", true, "query the provider instead of answering from the on-disk cache")
	if err := viper.BindPFlag("eod.live", rootCmd.PersistentFlags().Lookup("live")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for live failed")
	}

	viper.SetDefault("eod.base_url", provider.DefaultBaseURL)
	viper.SetDefault("eod.rate_limit", provider.DefaultRateLimit)
	viper.SetDefault("eod.cache_dir", "eodhd_cache")
	viper.SetDefault("snapshot.dir", defaultSnapshotDir)
	viper.SetDefault("snapshot.disabled", false)
	viper.SetDefault("snapshot.parquet", false)
	viper.SetDefault("batch.concurrency", 4)
	viper.SetDefault("batch.tolerate_provider_errors", false)
	viper.SetDefault("factors.filing_type", "quarterly")
	viper.SetDefault("factors.resample", "")
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvfactor" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvfactor")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}

	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.Warn().Err(err).Str("Level", viper.GetString("log.level")).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

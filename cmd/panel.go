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
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/factor"
	"github.com/penny-vault/pvfactor/frame"
)

type panelRow struct {
	Date   string  `csv:"date"`
	Asset  string  `csv:"asset"`
	Factor float64 `csv:"factor"`
}

var panelCmd = &cobra.Command{
	Use:   "panel FILE.csv FACTOR",
	Short: "Reshape an aggregated factor table for cross-sectional analysis",
	Long: `Reshape an aggregated factor table into a long factor file
(date, asset, factor) and a wide pricing file with one adjusted close column
per asset. Both are forward-filled per asset and written to --out.`,
	Args: cobra.ExactArgs(2),
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

		panel, err := factor.Panel(table, args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("could not build panel")
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			log.Fatal().Err(err).Str("Dir", outDir).Msg("could not create output directory")
		}

		rows := make([]*panelRow, len(panel.Factor))
		for i, obs := range panel.Factor {
			rows[i] = &panelRow{Date: obs.Date.Format(data.DateLayout), Asset: obs.Asset, Factor: obs.Value}
		}

		factorFN := filepath.Join(outDir, "factor.csv")
		content, err := gocsv.MarshalBytes(&rows)
		if err != nil {
			log.Fatal().Err(err).Msg("could not serialize factor panel")
		}
		if err := os.WriteFile(factorFN, content, 0o644); err != nil {
			log.Fatal().Err(err).Str("FileName", factorFN).Msg("could not write factor panel")
		}

		pricingFN := filepath.Join(outDir, "pricing.csv")
		pricing, err := os.Create(pricingFN)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", pricingFN).Msg("could not create pricing file")
		}
		defer pricing.Close()

		if err := panel.Pricing.WriteCSV(ctx, pricing); err != nil {
			log.Fatal().Err(err).Str("FileName", pricingFN).Msg("could not write pricing")
		}

		log.Info().Int("NumObservations", len(rows)).Int("NumAssets", len(panel.Pricing.Columns())).Msg("panel written")
	},
}

func init() {
	rootCmd.AddCommand(panelCmd)
	panelCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory the panel files are written to")
}

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
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvfactor/library"
	"github.com/penny-vault/pvfactor/provider"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about the factor library and provider cache",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()

		var doc strings.Builder

		if dbURL := viper.GetString("db.url"); dbURL != "" {
			myLibrary, err := library.NewFromDB(ctx, dbURL)
			if err != nil {
				log.Fatal().Err(err).Msg("could not load library info")
			}
			defer myLibrary.Close()

			summary, err := myLibrary.Summary(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("could not create library summary document")
			}
			doc.WriteString(summary)
		} else {
			doc.WriteString("# pvfactor\n\nNo factor library is configured; run `pvfactor init` to create one.\n")
		}

		cache := provider.NewCache(nil, viper.GetString("eod.cache_dir"), viper.GetBool("eod.live"))
		stats, err := cache.Stats()
		if err != nil {
			log.Fatal().Err(err).Str("Dir", cache.Dir).Msg("could not read provider cache")
		}
		doc.WriteString(cacheSummary(cache, stats))

		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		out, err := r.Render(doc.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render summary document")
		}

		fmt.Print(out)
	},
}

func cacheSummary(cache *provider.Cache, stats provider.CacheStats) string {
	mode := "offline"
	if cache.Live {
		mode = "live"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n## Provider Cache\n\n`%s` (%s mode, %s)\n\n", cache.Dir, mode, humanize.Bytes(uint64(stats.Bytes)))
	sb.WriteString("| Responses | Files |\n| --- | --- |\n")
	fmt.Fprintf(&sb, "| Fundamentals | %s |\n", humanize.Comma(int64(stats.Fundamentals)))
	fmt.Fprintf(&sb, "| End-of-day prices | %s |\n", humanize.Comma(int64(stats.Prices)))
	fmt.Fprintf(&sb, "| Intraday prices | %s |\n", humanize.Comma(int64(stats.Intraday)))
	fmt.Fprintf(&sb, "| Exchange listings | %s |\n", humanize.Comma(int64(stats.Listings)))
	return sb.String()
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

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
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/equity"
	"github.com/penny-vault/pvfactor/financials"
)

var profileCmd = &cobra.Command{
	Use:   "profile TICKER.EXCHANGE",
	Short: "Display the general and industry information of a stock",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()

		ticker, exchange, _, err := parseHolding(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse symbol")
		}

		stock := equity.NewStock(ticker, exchange, newSource())

		general, err := stock.GeneralInfo(ctx)
		if err != nil {
			log.Fatal().Err(err).Str("Symbol", stock.Symbol()).Msg("could not load fundamentals")
		}

		industry, err := stock.IndustryInfo(ctx)
		if err != nil && !errors.Is(err, data.ErrMissingField) {
			log.Fatal().Err(err).Str("Symbol", stock.Symbol()).Msg("could not load industry info")
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "# %s\n\n", stock.Symbol())
		writeAttributes(&sb, "General", general)
		if len(industry) > 0 {
			writeAttributes(&sb, "Industry", industry)
		}

		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)

		out, err := r.Render(sb.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render profile document")
		}

		fmt.Print(out)
	},
}

func writeAttributes(sb *strings.Builder, title string, attrs []financials.Attribute) {
	fmt.Fprintf(sb, "## %s\n\n| Field | Value |\n| --- | --- |\n", title)
	for _, attr := range attrs {
		value := strings.ReplaceAll(attr.Value, "|", "\\|")
		value = strings.ReplaceAll(value, "\n", " ")
		fmt.Fprintf(sb, "| %s | %s |\n", attr.Name, value)
	}
	sb.WriteString("\n")
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

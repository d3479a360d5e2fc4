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
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/pvfactor/factor"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the financial ratios computed for every asset",
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := catalogFromConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid ratios configuration")
		}

		var sb strings.Builder
		sb.WriteString("# Factor Catalog\n\n| Factor | Numerator | Denominator |\n| --- | --- | --- |\n")
		for _, name := range catalog.Names() {
			ratio, _ := catalog.Get(name)
			denominator := ratio.Denominator
			if denominator == factor.One {
				denominator = "-"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", name, ratio.Numerator, denominator)
		}

		sb.WriteString("\n## Technical Indicators\n\n")
		for _, name := range []string{factor.Vol1Y, factor.Vol1M, factor.MA1Y, factor.MA1M, factor.Momentum1Y} {
			fmt.Fprintf(&sb, "* `%s`\n", name)
		}

		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)

		out, err := r.Render(sb.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render catalog")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

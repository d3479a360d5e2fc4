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

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search the provider for tickers, names or ISINs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()

		results, err := newEODHD().Search(ctx, strings.Join(args, " "))
		if err != nil {
			log.Fatal().Err(err).Msg("search failed")
		}

		if len(results) == 0 {
			fmt.Println("no matches")
			return
		}

		symbol := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Width(14)
		detail := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

		for _, result := range results {
			fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top,
				symbol.Render(fmt.Sprintf("%s.%s", result.Code, result.Exchange)),
				result.Name,
				detail.Render(fmt.Sprintf("  %s, %s, %s", result.Type, result.Country, result.Currency)),
			))
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

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

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var exchangesCmd = &cobra.Command{
	Use:   "exchanges",
	Short: "List the exchanges supported by the provider",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()

		exchanges, err := newEODHD().Exchanges(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not list exchanges")
		}

		code := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Width(10)
		detail := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

		for _, exchange := range exchanges {
			fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top,
				code.Render(exchange.Code),
				exchange.Name,
				detail.Render(fmt.Sprintf("  %s, %s", exchange.Country, exchange.Currency)),
			))
		}
	},
}

func init() {
	rootCmd.AddCommand(exchangesCmd)
}

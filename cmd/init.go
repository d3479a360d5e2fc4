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

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvfactor/db"
	"github.com/penny-vault/pvfactor/library"
)

type eodSettings struct {
	APIKey   string `toml:"apikey"`
	CacheDir string `toml:"cache_dir"`
}

type dbSettings struct {
	URL string `toml:"url"`
}

type openFigiSettings struct {
	APIKey string `toml:"apikey,omitempty"`
}

// settings mirrors the keys read through viper.
type settings struct {
	EOD      eodSettings      `toml:"eod"`
	DB       dbSettings       `toml:"db,omitempty"`
	OpenFigi openFigiSettings `toml:"openfigi,omitempty"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather provider and database configuration and setup schema",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := newContext()

		myLibrary := &library.Library{}
		config := settings{
			EOD: eodSettings{
				APIKey:   viper.GetString("eod.apikey"),
				CacheDir: viper.GetString("eod.cache_dir"),
			},
		}

		form := huh.NewForm(
			// Provider credentials
			huh.NewGroup(
				huh.NewInput().
					Title("EOD Historical Data API key:").
					Value(&config.EOD.APIKey),

				huh.NewInput().
					Title("Directory for cached provider responses:").
					Value(&config.EOD.CacheDir),

				huh.NewInput().
					Title("OpenFIGI API key (optional):").
					Value(&config.OpenFigi.APIKey),
			),

			// Gather details about the library and who owns it
			huh.NewGroup(
				huh.NewInput().
					Title("Give the factor library a name:").
					Value(&myLibrary.Name),

				huh.NewInput().
					Title("Who owns the library?").
					Value(&myLibrary.Owner),
			),

			// Get details about the database
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL database, leave blank to skip (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&myLibrary.DBUrl).
					Validate(func(dsn string) error {
						if dsn == "" {
							return nil
						}
						_, err := pgx.ParseConfig(dsn)
						return err
					}),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		if myLibrary.DBUrl != "" {
			log.Info().Msg("creating database tables")

			if err := db.Migrate(db.MigrationURL(myLibrary.DBUrl)); err != nil {
				log.Fatal().Err(err).Msg("error running database migration")
			}

			log.Info().Msg("database tables created")
			log.Info().Msg("Saving library name and owner to database")

			if err := myLibrary.Connect(ctx); err != nil {
				log.Fatal().Err(err).Msg("could not connect to database")
			}
			defer myLibrary.Close()

			if err := myLibrary.SaveDB(ctx); err != nil {
				log.Fatal().Err(err).Msg("error saving library settings to database")
			}

			config.DB.URL = myLibrary.DBUrl
		}

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".pvfactor.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(config)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("pvfactor has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

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

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvfactor/equity"
	"github.com/penny-vault/pvfactor/factor"
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/frame"
	"github.com/penny-vault/pvfactor/provider"
	"github.com/penny-vault/pvfactor/snapshot"
	"github.com/penny-vault/pvfactor/universe"
)

// newContext returns a context carrying the global logger.
func newContext() context.Context {
	return log.Logger.WithContext(context.Background())
}

func newEODHD() *provider.EODHD {
	apiKey := viper.GetString("eod.apikey")
	if apiKey == "" {
		log.Warn().Msg("eod.apikey is not set; requests to eodhd will be rejected")
	}

	return provider.NewEODHD(apiKey,
		provider.WithBaseURL(viper.GetString("eod.base_url")),
		provider.WithRateLimit(viper.GetInt("eod.rate_limit")),
	)
}

// newSource builds the cached provider described by the eod.* settings.
func newSource() *provider.Cache {
	live := viper.GetBool("eod.live")

	var remote provider.Remote
	if live {
		remote = newEODHD()
	}

	return provider.NewCache(remote, viper.GetString("eod.cache_dir"), live)
}

// ratioConfig is one [[ratios]] entry. An empty denominator makes the
// ratio a plain level.
type ratioConfig struct {
	Name        string `mapstructure:"name"`
	Numerator   string `mapstructure:"numerator"`
	Denominator string `mapstructure:"denominator"`
}

// catalogFromConfig extends the base catalog with the [[ratios]] entries, in
// the order they are configured.
func catalogFromConfig() (*factor.Catalog, error) {
	catalog := factor.BaseCatalog()

	var extra []ratioConfig
	if err := viper.UnmarshalKey("ratios", &extra); err != nil {
		return nil, fmt.Errorf("parse ratios: %w", err)
	}

	for idx, ratio := range extra {
		if ratio.Name == "" || ratio.Numerator == "" {
			return nil, fmt.Errorf("ratio %d must have a name and a numerator", idx+1)
		}

		if ratio.Denominator == "" {
			catalog.Add(ratio.Name, factor.Level(ratio.Numerator))
			continue
		}

		catalog.Add(ratio.Name, factor.Over(ratio.Numerator, ratio.Denominator))
	}

	return catalog, nil
}

// snapshotStore writes per-asset tables under snapshot.dir unless
// snapshot.disabled is set.
func snapshotStore() snapshot.Store {
	if viper.GetBool("snapshot.disabled") {
		return nil
	}

	dir := viper.GetString("snapshot.dir")
	if dir == "" {
		dir = defaultSnapshotDir
	}

	stores := snapshot.Multi{&snapshot.CSVStore{Dir: dir}}
	if viper.GetBool("snapshot.parquet") {
		stores = append(stores, &snapshot.ParquetStore{
			Dir:    dir,
			Bucket: viper.GetString("backblaze.bucket"),
			Prefix: viper.GetString("backblaze.prefix"),
		})
	}

	return stores
}

func factorOptions() (equity.FactorOptions, error) {
	filingType, err := financials.ParseFilingType(viper.GetString("factors.filing_type"))
	if err != nil {
		return equity.FactorOptions{}, err
	}

	var rule frame.Rule
	if resample := viper.GetString("factors.resample"); resample != "" {
		rule, err = frame.ParseRule(resample)
		if err != nil {
			return equity.FactorOptions{}, err
		}
	}

	catalog, err := catalogFromConfig()
	if err != nil {
		return equity.FactorOptions{}, err
	}

	return equity.FactorOptions{
		FilingType: filingType,
		Resample:   rule,
		Catalog:    catalog,
		Store:      snapshotStore(),
	}, nil
}

func batchOptions() (universe.Options, error) {
	factorOpts, err := factorOptions()
	if err != nil {
		return universe.Options{}, err
	}

	return universe.Options{
		Source:                 newSource(),
		Factor:                 factorOpts,
		Concurrency:            viper.GetInt("batch.concurrency"),
		TolerateProviderErrors: viper.GetBool("batch.tolerate_provider_errors"),
	}, nil
}

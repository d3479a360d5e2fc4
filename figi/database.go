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
package figi

import (
	"context"

	"github.com/alphadose/haxmap"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

var (
	figiMap *haxmap.Map[string, string]
)

func init() {
	figiMap = haxmap.New[string, string]()
}

// MapInstance returns the process wide symbol to composite FIGI cache.
func MapInstance() *haxmap.Map[string, string] {
	return figiMap
}

type symbolFigi struct {
	Symbol        string `db:"symbol"`
	CompositeFigi string `db:"composite_figi"`
}

// LoadCacheFromDB seeds the cache with the FIGIs already stored alongside
// factors.
func LoadCacheFromDB(ctx context.Context, dbConn *pgxpool.Conn) {
	logger := zerolog.Ctx(ctx)

	sql := "SELECT DISTINCT symbol, composite_figi FROM factors WHERE composite_figi <> ''"

	rows, err := dbConn.Query(ctx, sql)
	if err != nil {
		logger.Error().Err(err).Str("SQL", sql).Msg("load figi cache from DB failed")
		return
	}

	var known []*symbolFigi
	if err := pgxscan.ScanAll(&known, rows); err != nil {
		logger.Error().Err(err).Msg("error when scanning values into figi cache")
		return
	}

	cache := MapInstance()
	for _, item := range known {
		cache.Set(item.Symbol, item.CompositeFigi)
	}

	logger.Debug().Int("NumSymbols", len(known)).Msg("loaded figi cache")
}

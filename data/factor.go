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
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// FactorObservation is a single factor value in long format: one row per
// (date, symbol, factor).
type FactorObservation struct {
	EventDate     string  `json:"event_date" db:"event_date" parquet:"name=event_date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Symbol        string  `json:"symbol" db:"symbol" parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Ticker        string  `json:"ticker" db:"ticker" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CompositeFigi string  `json:"composite_figi" db:"composite_figi" parquet:"name=composite_figi, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Factor        string  `json:"factor" db:"factor" parquet:"name=factor, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Value         float64 `json:"value" db:"value" parquet:"name=value, type=DOUBLE"`
}

// RunSummary describes one batch factor computation over a collection.
type RunSummary struct {
	ID              uuid.UUID `db:"id"`
	Collection      string    `db:"collection"`
	StartTime       time.Time `db:"start_time"`
	EndTime         time.Time `db:"end_time"`
	NumAssets       int       `db:"num_assets"`
	NumSucceeded    int       `db:"num_succeeded"`
	NumFailed       int       `db:"num_failed"`
	NumObservations int       `db:"num_observations"`
}

// SaveFactorObservations upserts observations into tbl inside one transaction.
func SaveFactorObservations(ctx context.Context, tbl string, dbConn *pgxpool.Conn, observations []*FactorObservation) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"event_date",
		"symbol",
		"ticker",
		"composite_figi",
		"factor",
		"value"
	) VALUES (
		$1,
		$2,
		$3,
		$4,
		$5,
		$6
	) ON CONFLICT ON CONSTRAINT %[1]s_pkey
	DO UPDATE SET
		ticker = EXCLUDED.ticker,
		composite_figi = EXCLUDED.composite_figi,
		value = EXCLUDED.value;`, tbl)

	batch := &pgx.Batch{}
	for _, obs := range observations {
		batch.Queue(sql, obs.EventDate, obs.Symbol, obs.Ticker, obs.CompositeFigi, obs.Factor, obs.Value)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		log.Error().Err(err).Str("Table", tbl).Int("NumObservations", len(observations)).Msg("error saving factor observations to database")
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("could not rollback factor transaction")
		}
		return err
	}

	return tx.Commit(ctx)
}

// SaveDB records the summary of a batch run.
func (summary *RunSummary) SaveDB(ctx context.Context, dbConn *pgxpool.Conn) error {
	_, err := dbConn.Exec(ctx, `INSERT INTO factor_runs (
		"id",
		"collection",
		"start_time",
		"end_time",
		"num_assets",
		"num_succeeded",
		"num_failed",
		"num_observations"
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, summary.ID, summary.Collection, summary.StartTime,
		summary.EndTime, summary.NumAssets, summary.NumSucceeded, summary.NumFailed, summary.NumObservations)
	if err != nil {
		log.Error().Err(err).Str("RunID", summary.ID.String()).Msg("error saving run summary to database")
	}
	return err
}

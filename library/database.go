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
package library

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
	"github.com/penny-vault/pvfactor/snapshot"
	"github.com/penny-vault/pvfactor/universe"
)

const FactorTable = "factors"

var ErrNotConnected = errors.New("library is not connected to a database")

// Library is a PostgreSQL database of computed factors.
type Library struct {
	DBUrl string `toml:"db_url"`
	Name  string `toml:"name"`
	Owner string `toml:"owner"`

	Pool *pgxpool.Pool `toml:"-"`
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	if myLibrary.Pool != nil {
		myLibrary.Pool.Close()
	}
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl: dbURL,
		Pool:  pool,
	}

	if err := conn.QueryRow(ctx, "SELECT name, owner FROM library").Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		return nil, err
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	conn, err := myLibrary.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO library ("name", "owner") VALUES ($1, $2)`, myLibrary.Name, myLibrary.Owner)
	return err
}

func (myLibrary *Library) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if myLibrary.Pool == nil {
		return nil, ErrNotConnected
	}
	return myLibrary.Pool.Acquire(ctx)
}

// Save stores the factor table of symbol; it satisfies snapshot.Store.
func (myLibrary *Library) Save(ctx context.Context, symbol string, table *frame.Frame) error {
	return myLibrary.SaveObservations(ctx, snapshot.Observations(symbol, table))
}

// SaveObservations upserts factor observations.
func (myLibrary *Library) SaveObservations(ctx context.Context, observations []*data.FactorObservation) error {
	if len(observations) == 0 {
		return nil
	}

	conn, err := myLibrary.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return data.SaveFactorObservations(ctx, FactorTable, conn, observations)
}

// SaveResults stores the tables of every successful result stamped with the
// asset's composite FIGI, then records the run summary.
func (myLibrary *Library) SaveResults(ctx context.Context, results []*universe.Result, summary *data.RunSummary) error {
	logger := zerolog.Ctx(ctx)

	for _, result := range results {
		if !result.Succeeded() {
			continue
		}

		observations := snapshot.Observations(result.Asset.Symbol(), result.Table)
		for _, obs := range observations {
			obs.CompositeFigi = result.Asset.CompositeFigi
		}

		if err := myLibrary.SaveObservations(ctx, observations); err != nil {
			logger.Error().Err(err).Str("Symbol", result.Asset.Symbol()).Msg("could not save factors to library")
			return err
		}
	}

	conn, err := myLibrary.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return summary.SaveDB(ctx, conn)
}

// LoadFactors returns the stored observations of symbol between start and
// end inclusive, ordered by date and factor.
func (myLibrary *Library) LoadFactors(ctx context.Context, symbol string, start, end time.Time) ([]*data.FactorObservation, error) {
	if myLibrary.Pool == nil {
		return nil, ErrNotConnected
	}

	observations := make([]*data.FactorObservation, 0)
	err := pgxscan.Select(ctx, myLibrary.Pool, &observations,
		`SELECT to_char(event_date, 'YYYY-MM-DD') AS event_date, symbol, ticker, composite_figi, factor, value
FROM factors WHERE symbol=$1 AND event_date BETWEEN $2 AND $3 ORDER BY event_date, factor`,
		symbol, start, end)

	return observations, err
}

// Runs returns the most recent run summaries, newest first.
func (myLibrary *Library) Runs(ctx context.Context, limit int) ([]*data.RunSummary, error) {
	if myLibrary.Pool == nil {
		return nil, ErrNotConnected
	}

	runs := make([]*data.RunSummary, 0, limit)
	err := pgxscan.Select(ctx, myLibrary.Pool, &runs,
		`SELECT id, collection, start_time, end_time, num_assets, num_succeeded, num_failed,
num_observations FROM factor_runs ORDER BY start_time DESC LIMIT $1`, limit)

	return runs, err
}

// NumSymbols returns the number of distinct symbols with stored factors
func (myLibrary *Library) NumSymbols(ctx context.Context) (int, error) {
	conn, err := myLibrary.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(DISTINCT symbol) FROM factors").Scan(&count)
	return count, err
}

// TotalRecords returns the total number of factor observations in the library
func (myLibrary *Library) TotalRecords(ctx context.Context) (int, error) {
	conn, err := myLibrary.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM factors").Scan(&count)
	return count, err
}

// LastUpdated returns the end time of the most recent run
func (myLibrary *Library) LastUpdated(ctx context.Context) (time.Time, error) {
	conn, err := myLibrary.acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastUpdated time.Time
	err = conn.QueryRow(ctx, "SELECT coalesce(max(end_time), '0001-01-01'::timestamp) FROM factor_runs").Scan(&lastUpdated)
	if err != nil {
		return time.Time{}, err
	}

	return lastUpdated, nil
}

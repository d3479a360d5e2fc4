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
package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/penny-vault/pvfactor/backblaze"
	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/frame"
)

// ParquetStore writes <Dir>/<symbol>.parquet in long format and, when Bucket
// is set, uploads the file to backblaze under Prefix.
type ParquetStore struct {
	Dir    string
	Bucket string
	Prefix string
}

func (store *ParquetStore) Path(symbol string) string {
	return filepath.Join(store.Dir, symbol+".parquet")
}

func (store *ParquetStore) Save(ctx context.Context, symbol string, table *frame.Frame) error {
	logger := zerolog.Ctx(ctx)

	if err := os.MkdirAll(store.Dir, 0o755); err != nil {
		logger.Error().Err(err).Str("Dir", store.Dir).Msg("could not create snapshot directory")
		return err
	}

	fn := store.Path(symbol)
	if err := WriteParquet(ctx, Observations(symbol, table), fn); err != nil {
		return err
	}

	if store.Bucket == "" {
		logger.Debug().Msg("skipping upload to backblaze because no bucket is configured")
		return nil
	}

	return backblaze.Upload(ctx, fn, store.Bucket, store.Prefix)
}

// WriteParquet saves observations to fn with ZSTD compression.
func WriteParquet(ctx context.Context, observations []*data.FactorObservation, fn string) error {
	logger := zerolog.Ctx(ctx)

	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		logger.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(data.FactorObservation), 4)
	if err != nil {
		logger.Error().Err(err).Str("FileName", fn).Msg("parquet write failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, obs := range observations {
		if err = pw.Write(obs); err != nil {
			logger.Error().Err(err).
				Str("EventDate", obs.EventDate).Str("Symbol", obs.Symbol).Str("Factor", obs.Factor).
				Msg("parquet write failed for record")
		}
	}

	if err = pw.WriteStop(); err != nil {
		logger.Error().Err(err).Msg("parquet write failed")
		return err
	}

	logger.Debug().Int("NumRecords", len(observations)).Str("FileName", fn).Msg("parquet write finished")
	return nil
}

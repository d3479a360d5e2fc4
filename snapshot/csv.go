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

	"github.com/penny-vault/pvfactor/frame"
)

// CSVStore writes <Dir>/<symbol>.csv, replacing any earlier snapshot.
type CSVStore struct {
	Dir string
}

func (store *CSVStore) Path(symbol string) string {
	return filepath.Join(store.Dir, symbol+".csv")
}

func (store *CSVStore) Save(ctx context.Context, symbol string, table *frame.Frame) error {
	logger := zerolog.Ctx(ctx)

	if err := os.MkdirAll(store.Dir, 0o755); err != nil {
		logger.Error().Err(err).Str("Dir", store.Dir).Msg("could not create snapshot directory")
		return err
	}

	fn := store.Path(symbol)
	fh, err := os.Create(fn)
	if err != nil {
		logger.Error().Err(err).Str("FileName", fn).Msg("could not create snapshot file")
		return err
	}
	defer fh.Close()

	if err := table.WriteCSV(ctx, fh); err != nil {
		logger.Error().Err(err).Str("FileName", fn).Msg("could not write snapshot")
		return err
	}

	logger.Debug().Str("FileName", fn).Int("NumRows", table.Len()).Msg("saved factor snapshot")
	return nil
}

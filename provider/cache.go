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
package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"github.com/penny-vault/pvfactor/data"
)

// Remote is the part of the live provider the cache writes through.
type Remote interface {
	FundamentalsRaw(ctx context.Context, symbol string) ([]byte, error)
	PriceHistory(ctx context.Context, symbol string, start, end time.Time, period string) ([]*data.Eod, error)
	Intraday(ctx context.Context, symbol string, interval string) ([]*data.IntradayBar, error)
	ExchangeListingRaw(ctx context.Context, code string) ([]byte, error)
}

// Cache decides between the live provider and the on-disk copy of earlier
// responses. In live mode every response is persisted under Dir before it is
// returned; otherwise responses are read from Dir and the remote is never
// contacted.
type Cache struct {
	Remote Remote
	Dir    string
	Live   bool
}

var ErrNoRemote = errors.New("live mode requires a remote provider")

func NewCache(remote Remote, dir string, live bool) *Cache {
	return &Cache{
		Remote: remote,
		Dir:    dir,
		Live:   live,
	}
}

func (cache *Cache) path(kind, name, ext string) string {
	return filepath.Join(cache.Dir, kind, name+ext)
}

func (cache *Cache) write(fn string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return err
	}
	return os.WriteFile(fn, content, 0o644)
}

func (cache *Cache) remote() (Remote, error) {
	if cache.Remote == nil {
		return nil, ErrNoRemote
	}
	return cache.Remote, nil
}

func (cache *Cache) fundamentalsRaw(ctx context.Context, symbol string) ([]byte, error) {
	fn := cache.path("fundamentals", symbol, ".json")

	if !cache.Live {
		raw, err := os.ReadFile(fn)
		if err != nil {
			return nil, fmt.Errorf("read cached fundamentals for %s: %w", symbol, err)
		}
		return raw, nil
	}

	remote, err := cache.remote()
	if err != nil {
		return nil, err
	}

	raw, err := remote.FundamentalsRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := cache.write(fn, raw); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("FileName", fn).Msg("could not write fundamentals to cache")
	}

	return raw, nil
}

func (cache *Cache) Fundamentals(ctx context.Context, symbol string) (*data.FundamentalsPayload, error) {
	raw, err := cache.fundamentalsRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}

	payload, err := data.DecodeFundamentals(raw)
	if err != nil {
		return nil, fmt.Errorf("decode fundamentals for %s: %w", symbol, err)
	}

	return payload, nil
}

// PriceHistory downloads the full history in live mode so that later
// non-live requests for any range can be answered from disk.
func (cache *Cache) PriceHistory(ctx context.Context, symbol string, start, end time.Time, period string) ([]*data.Eod, error) {
	if period == "" {
		period = "d"
	}

	name := symbol
	if period != "d" {
		name = fmt.Sprintf("%s_%s", symbol, period)
	}
	fn := cache.path("eod", name, ".csv")

	var quotes []*data.Eod

	if cache.Live {
		remote, err := cache.remote()
		if err != nil {
			return nil, err
		}

		quotes, err = remote.PriceHistory(ctx, symbol, HistoryStart, time.Now(), period)
		if err != nil {
			return nil, err
		}

		if content, err := gocsv.MarshalBytes(&quotes); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("Symbol", symbol).Msg("could not serialize eod prices")
		} else if err := cache.write(fn, content); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("FileName", fn).Msg("could not write eod prices to cache")
		}
	} else {
		content, err := os.ReadFile(fn)
		if err != nil {
			return nil, fmt.Errorf("read cached eod prices for %s: %w", symbol, err)
		}

		quotes = make([]*data.Eod, 0)
		if err := gocsv.UnmarshalBytes(content, &quotes); err != nil {
			return nil, fmt.Errorf("parse cached eod prices for %s: %w", symbol, err)
		}
	}

	return data.FilterEod(quotes, start, end), nil
}

func (cache *Cache) Intraday(ctx context.Context, symbol string, interval string) ([]*data.IntradayBar, error) {
	if interval == "" {
		interval = "5m"
	}

	fn := cache.path("intraday", fmt.Sprintf("%s_%s", symbol, interval), ".csv")

	if !cache.Live {
		content, err := os.ReadFile(fn)
		if err != nil {
			return nil, fmt.Errorf("read cached intraday prices for %s: %w", symbol, err)
		}

		bars := make([]*data.IntradayBar, 0)
		if err := gocsv.UnmarshalBytes(content, &bars); err != nil {
			return nil, fmt.Errorf("parse cached intraday prices for %s: %w", symbol, err)
		}
		return bars, nil
	}

	remote, err := cache.remote()
	if err != nil {
		return nil, err
	}

	bars, err := remote.Intraday(ctx, symbol, interval)
	if err != nil {
		return nil, err
	}

	if content, err := gocsv.MarshalBytes(&bars); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("Symbol", symbol).Msg("could not serialize intraday prices")
	} else if err := cache.write(fn, content); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("FileName", fn).Msg("could not write intraday prices to cache")
	}

	return bars, nil
}

func (cache *Cache) IndexConstituents(ctx context.Context, index string, asOf time.Time, country string) ([]*data.Constituent, error) {
	raw, err := cache.fundamentalsRaw(ctx, IndexSymbol(index))
	if err != nil {
		return nil, err
	}

	return Constituents(ctx, raw, asOf, country)
}

func (cache *Cache) ExchangeListing(ctx context.Context, code string) ([]*data.Listing, error) {
	fn := cache.path("listings", code, ".csv")

	if !cache.Live {
		raw, err := os.ReadFile(fn)
		if err != nil {
			return nil, fmt.Errorf("read cached listing for %s: %w", code, err)
		}
		return parseListing(raw)
	}

	remote, err := cache.remote()
	if err != nil {
		return nil, err
	}

	raw, err := remote.ExchangeListingRaw(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := cache.write(fn, raw); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("FileName", fn).Msg("could not write exchange listing to cache")
	}

	return parseListing(raw)
}

// CacheStats counts the responses held in a cache directory.
type CacheStats struct {
	Fundamentals int
	Prices       int
	Intraday     int
	Listings     int
	Bytes        int64
}

// Stats walks the cache directory. A directory that does not exist yet is
// an empty cache.
func (cache *Cache) Stats() (CacheStats, error) {
	var stats CacheStats

	err := filepath.WalkDir(cache.Dir, func(fn string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(cache.Dir, fn)
		if err != nil {
			return err
		}

		switch strings.SplitN(filepath.ToSlash(rel), "/", 2)[0] {
		case "fundamentals":
			stats.Fundamentals++
		case "eod":
			stats.Prices++
		case "intraday":
			stats.Intraday++
		case "listings":
			stats.Listings++
		default:
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		stats.Bytes += info.Size()

		return nil
	})

	if errors.Is(err, fs.ErrNotExist) {
		return CacheStats{}, nil
	}

	return stats, err
}

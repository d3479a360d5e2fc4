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
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/penny-vault/pvfactor/data"
)

const indexSuffix = ".INDX"

// IndexSymbol appends the index exchange suffix when it is missing.
func IndexSymbol(index string) string {
	if strings.HasSuffix(index, indexSuffix) {
		return index
	}
	return index + indexSuffix
}

// Constituents extracts the members of an index from its fundamentals
// document. When the document carries historical components only the
// members active on asOf are returned, which may be none; a member with no
// end date is still active. Documents without historical components fall
// back to the current components.
func Constituents(ctx context.Context, raw []byte, asOf time.Time, country string) ([]*data.Constituent, error) {
	logger := zerolog.Ctx(ctx)

	if !gjson.ValidBytes(raw) {
		return nil, &data.MissingFieldError{Field: "Components", Source: "index fundamentals"}
	}

	day := asOf.Format(data.DateLayout)
	members := make([]*data.Constituent, 0)

	historical := gjson.GetBytes(raw, "HistoricalTickerComponents")
	for _, item := range sortedValues(historical) {
		member := constituentFrom(item, country)
		if member.StartDate == "" || member.StartDate >= day {
			continue
		}
		if member.EndDate != "" && member.EndDate <= day {
			continue
		}
		members = append(members, member)
	}

	if historical.Exists() {
		if len(members) == 0 {
			logger.Info().Str("AsOf", day).Msg("no historical members active on date")
		}
		return members, nil
	}

	logger.Warn().Str("AsOf", day).Msg("no historical ticker data, returning current components")

	components := gjson.GetBytes(raw, "Components")
	if !components.Exists() {
		return nil, &data.MissingFieldError{Field: "Components", Source: "index fundamentals"}
	}

	for _, item := range sortedValues(components) {
		members = append(members, constituentFrom(item, country))
	}

	return members, nil
}

// sortedValues returns the members of an object keyed "0", "1", ... (or an
// array) in numeric key order.
func sortedValues(result gjson.Result) []gjson.Result {
	if result.IsArray() {
		return result.Array()
	}

	if !result.IsObject() {
		return nil
	}

	type entry struct {
		key   string
		value gjson.Result
	}

	entries := make([]entry, 0)
	result.ForEach(func(key, value gjson.Result) bool {
		entries = append(entries, entry{key: key.String(), value: value})
		return true
	})

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].key, entries[j].key
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})

	values := make([]gjson.Result, len(entries))
	for i, e := range entries {
		values[i] = e.value
	}
	return values
}

func constituentFrom(item gjson.Result, country string) *data.Constituent {
	member := &data.Constituent{
		Code:        item.Get("Code").String(),
		Exchange:    item.Get("Exchange").String(),
		Name:        item.Get("Name").String(),
		Sector:      item.Get("Sector").String(),
		Industry:    item.Get("Industry").String(),
		StartDate:   item.Get("StartDate").String(),
		EndDate:     item.Get("EndDate").String(),
		IsActiveNow: item.Get("IsActiveNow").Bool(),
		IsDelisted:  item.Get("IsDelisted").Bool(),
	}

	if member.Exchange == "" {
		member.Exchange = country
	}

	return member
}

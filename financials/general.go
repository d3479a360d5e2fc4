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
package financials

import (
	"github.com/penny-vault/pvfactor/data"
)

// GeneralFields are the descriptive fields reported by GeneralInfo.
var GeneralFields = []string{"Code", "CountryName", "Sector", "InternationalDomestic",
	"Industry", "GicSector", "GicIndustry", "GicSubIndustry", "HomeCategory"}

// IndustryFields are broadcast onto every row of a factor table.
var IndustryFields = []string{"CountryName", "Sector", "Industry", "GicSector", "GicIndustry", "GicSubIndustry"}

// Attribute is a named descriptive value.
type Attribute struct {
	Name  string
	Value string
}

// GeneralInfo returns the general descriptive fields; absent fields are empty.
func GeneralInfo(payload *data.FundamentalsPayload) []Attribute {
	attrs := make([]Attribute, 0, len(GeneralFields))
	for _, field := range GeneralFields {
		attrs = append(attrs, Attribute{Name: field, Value: data.TextValue(payload.General[field])})
	}
	return attrs
}

// GeneralItem looks up a single field of the General section.
func GeneralItem(payload *data.FundamentalsPayload, item string) (any, bool) {
	val, ok := payload.General[item]
	return val, ok
}

// IndustryInfo returns the industry classification of the asset. Every field
// must be present in the payload; a null value is empty.
func IndustryInfo(payload *data.FundamentalsPayload) ([]Attribute, error) {
	if payload.General == nil {
		return nil, &data.MissingFieldError{Field: "General", Source: "fundamentals"}
	}

	attrs := make([]Attribute, 0, len(IndustryFields))
	for _, field := range IndustryFields {
		val, ok := payload.General[field]
		if !ok {
			return nil, &data.MissingFieldError{Field: field, Source: "General"}
		}
		attrs = append(attrs, Attribute{Name: field, Value: data.TextValue(val)})
	}

	return attrs, nil
}

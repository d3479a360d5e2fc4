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
package factor

import (
	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/financials"
	"github.com/penny-vault/pvfactor/frame"
)

// Ratios joins the fundamentals and market-cap tables on the union of their
// dates and computes one column per catalog entry, in catalog order. With
// extrapolateForward the joined table is forward-filled first so ratios stay
// defined between filings. The AsOf column of the joined table is carried
// over unchanged.
func Ratios(fundamentals, marketCap *frame.Frame, catalog *Catalog, extrapolateForward bool) (*frame.Frame, error) {
	base := frame.Join(fundamentals, marketCap)
	if extrapolateForward {
		base = base.FFill()
	}

	out := frame.New(base.Index())
	for _, name := range catalog.Names() {
		ratio, _ := catalog.Get(name)

		numerator, ok := base.Float(ratio.Numerator)
		if !ok {
			return nil, &data.MissingFieldError{Field: ratio.Numerator, Source: name}
		}

		if ratio.Denominator == One {
			out.SetFloat(name, numerator)
			continue
		}

		denominator, ok := base.Float(ratio.Denominator)
		if !ok {
			return nil, &data.MissingFieldError{Field: ratio.Denominator, Source: name}
		}

		vals := make([]float64, len(numerator))
		for i := range vals {
			vals[i] = numerator[i] / denominator[i]
		}
		out.SetFloat(name, vals)
	}

	asOf, ok := base.Text(financials.AsOfColumn)
	if !ok {
		return nil, &data.MissingFieldError{Field: financials.AsOfColumn, Source: "financial history"}
	}
	out.SetText(financials.AsOfColumn, asOf)

	return out, nil
}

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
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// NullDate is the value the provider uses when a filing date is unknown.
const NullDate = "0000-00-00"

var (
	ErrUnexpectedToken = errors.New("unexpected json token")
)

// Statement sections in the order they are combined into a financial history.
var StatementSections = []string{"Balance_Sheet", "Cash_Flow", "Income_Statement"}

// FundamentalsPayload is the fundamentals document returned by EOD Historical
// Data for a single symbol.
type FundamentalsPayload struct {
	General           map[string]any            `json:"General"`
	Financials        map[string]*Statement     `json:"Financials"`
	OutstandingShares map[string]*SharesEntries `json:"outstandingShares"`

	// Raw holds the undecoded document; index payloads are queried with gjson
	Raw []byte `json:"-"`
}

// Statement is one financial statement. The provider reports the currency
// next to the filings of each cadence.
type Statement struct {
	CurrencySymbol string   `json:"currency_symbol"`
	Quarterly      *Filings `json:"quarterly"`
	Yearly         *Filings `json:"yearly"`
	Annual         *Filings `json:"annual"`
}

// Cadence returns the filings reported for cadence. "annual" falls back to
// the provider's "yearly" key.
func (statement *Statement) Cadence(cadence string) (*Filings, bool) {
	if statement == nil {
		return nil, false
	}

	switch cadence {
	case "quarterly":
		return statement.Quarterly, statement.Quarterly != nil
	case "yearly":
		return statement.Yearly, statement.Yearly != nil
	case "annual":
		if statement.Annual != nil {
			return statement.Annual, true
		}
		return statement.Yearly, statement.Yearly != nil
	default:
		return nil, false
	}
}

// Record is one filing: line item name to raw value (string, number or nil).
type Record map[string]any

// Filings preserves the provider's report-id order, which decides which record
// wins when two resolve to the same date.
type Filings struct {
	IDs     []string
	Records []Record
}

type SharesEntry struct {
	Date          string `json:"date"`
	DateFormatted string `json:"dateFormatted"`
	SharesMln     Number `json:"sharesMln"`
	Shares        Number `json:"shares"`
}

// SharesEntries accepts both the array and the numbered-object encodings the
// provider uses for outstanding shares.
type SharesEntries []*SharesEntry

// Number decodes numbers, numeric strings, "None" and null; anything that is
// not a number becomes NaN.
type Number float64

// DecodeFundamentals parses a fundamentals document.
func DecodeFundamentals(raw []byte) (*FundamentalsPayload, error) {
	payload := &FundamentalsPayload{}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, err
	}
	payload.Raw = raw
	return payload, nil
}

// Section returns the filings of a statement for the requested cadence.
func (payload *FundamentalsPayload) Section(statement, cadence string) (*Filings, error) {
	if payload.Financials == nil {
		return nil, &MissingFieldError{Field: "Financials", Source: "fundamentals"}
	}

	sections, ok := payload.Financials[statement]
	if !ok || sections == nil {
		return nil, &MissingFieldError{Field: statement, Source: "Financials"}
	}

	filings, ok := sections.Cadence(cadence)
	if !ok {
		return nil, &MissingFieldError{Field: cadence, Source: statement}
	}

	return filings, nil
}

func (filings *Filings) Len() int {
	if filings == nil {
		return 0
	}
	return len(filings.Records)
}

func (filings *Filings) UnmarshalJSON(b []byte) error {
	filings.IDs = filings.IDs[:0]
	filings.Records = filings.Records[:0]

	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '[' {
		records := make([]Record, 0)
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return err
		}
		for idx, rec := range records {
			filings.IDs = append(filings.IDs, strconv.Itoa(idx))
			filings.Records = append(filings.Records, rec)
		}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: %v", ErrUnexpectedToken, tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("%w: %v", ErrUnexpectedToken, keyTok)
		}

		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return err
		}

		filings.IDs = append(filings.IDs, key)
		filings.Records = append(filings.Records, rec)
	}

	return nil
}

func (entries *SharesEntries) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*entries = nil
		return nil
	}

	if trimmed[0] == '[' {
		list := make([]*SharesEntry, 0)
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*entries = list
		return nil
	}

	var ordered Filings
	if err := ordered.UnmarshalJSON(trimmed); err != nil {
		return err
	}

	list := make([]*SharesEntry, 0, ordered.Len())
	for _, rec := range ordered.Records {
		list = append(list, &SharesEntry{
			Date:          TextValue(rec["date"]),
			DateFormatted: TextValue(rec["dateFormatted"]),
			SharesMln:     Number(FloatValue(rec["sharesMln"])),
			Shares:        Number(FloatValue(rec["shares"])),
		})
	}
	*entries = list

	return nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = Number(FloatValue(raw))
	return nil
}

// FloatValue converts a raw payload value to float64. Missing markers and
// text that is not a number map to NaN.
func FloatValue(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		s := strings.TrimSpace(val)
		if s == "" || s == "None" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// TextValue returns the string form of a raw payload value; nil and "None"
// are empty.
func TextValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if val == "None" {
			return ""
		}
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IsMissing reports whether a raw payload value is one of the provider's
// missing markers.
func IsMissing(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(val)
		return s == "" || s == "None"
	case float64:
		return math.IsNaN(val)
	default:
		return false
	}
}

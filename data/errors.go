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
	"errors"
	"fmt"
)

var (
	ErrProvider     = errors.New("provider returned an unsuccessful response")
	ErrEmptyData    = errors.New("no data available")
	ErrNoSharesData = errors.New("no outstanding shares data available")
	ErrMissingField = errors.New("field not present")
)

// ProviderError is returned when the upstream data provider responds with a
// non-success status code. It is never retried by the factor pipeline.
type ProviderError struct {
	StatusCode int
	Reason     string
	URL        string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%d): %s [%s]", ErrProvider, e.StatusCode, e.Reason, e.URL)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// EmptyDataError is returned when a payload section has zero records.
type EmptyDataError struct {
	Section string
}

func (e *EmptyDataError) Error() string {
	if e.Section == "" {
		return ErrEmptyData.Error()
	}
	return fmt.Sprintf("%s: %s", ErrEmptyData, e.Section)
}

func (e *EmptyDataError) Is(target error) bool {
	return target == ErrEmptyData
}

// NoSharesDataError is returned when neither quarterly nor annual outstanding
// share counts are present for a symbol.
type NoSharesDataError struct {
	Symbol string
}

func (e *NoSharesDataError) Error() string {
	if e.Symbol == "" {
		return ErrNoSharesData.Error()
	}
	return fmt.Sprintf("%s: %s", ErrNoSharesData, e.Symbol)
}

func (e *NoSharesDataError) Is(target error) bool {
	return target == ErrNoSharesData
}

// MissingFieldError names a column or payload key that a computation needed
// but its source did not have.
type MissingFieldError struct {
	Field  string
	Source string
}

func (e *MissingFieldError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %q", ErrMissingField, e.Field)
	}
	return fmt.Sprintf("%s: %q in %s", ErrMissingField, e.Field, e.Source)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Recoverable reports whether err is one of the per-asset failures a batch
// run logs and skips. Provider errors are not recoverable.
func Recoverable(err error) bool {
	return errors.Is(err, ErrEmptyData) ||
		errors.Is(err, ErrNoSharesData) ||
		errors.Is(err, ErrMissingField)
}

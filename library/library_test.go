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
package library_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvfactor/data"
	"github.com/penny-vault/pvfactor/library"
)

var _ = Describe("Library", func() {
	It("formats large counts with separators", func() {
		runs := []*data.RunSummary{{
			ID:              uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000000"),
			Collection:      "GSPC.INDX",
			EndTime:         time.Now().Add(-2 * time.Hour),
			NumAssets:       503,
			NumSucceeded:    498,
			NumObservations: 1234567,
		}}

		summary := library.FormatSummary("factors", "postgres://localhost/factors", 498, 9876543, time.Now().Add(-2*time.Hour), runs)
		Expect(summary).To(HavePrefix("# factors\n"))
		Expect(summary).To(ContainSubstring("Factor Observations: 9,876,543"))
		Expect(summary).To(ContainSubstring("GSPC.INDX: 498 of 503 assets, 1,234,567 observations, "))
		Expect(summary).To(ContainSubstring("[6f1c2d]"))
	})

	It("reports a library that never ran", func() {
		summary := library.FormatSummary("factors", "postgres://localhost/factors", 0, 0, time.Time{}, nil)
		Expect(summary).To(ContainSubstring("Last Updated: Never"))
		Expect(summary).To(ContainSubstring("  * none"))
	})

	It("refuses to query without a connection", func() {
		myLibrary := &library.Library{}
		_, err := myLibrary.LoadFactors(context.Background(), "AAPL.US", time.Time{}, time.Now())
		Expect(err).To(MatchError(library.ErrNotConnected))
		Expect(myLibrary.SaveObservations(context.Background(), []*data.FactorObservation{{Symbol: "AAPL.US"}})).To(MatchError(library.ErrNotConnected))
	})
})

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
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/penny-vault/pvfactor/data"
)

const recentRuns = 10

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	numSymbols, err := myLibrary.NumSymbols(ctx)
	if err != nil {
		return "", err
	}

	totalRecords, err := myLibrary.TotalRecords(ctx)
	if err != nil {
		return "", err
	}

	lastUpdated, err := myLibrary.LastUpdated(ctx)
	if err != nil {
		return "", err
	}

	runs, err := myLibrary.Runs(ctx, recentRuns)
	if err != nil {
		return "", err
	}

	return FormatSummary(myLibrary.Name, myLibrary.DBUrl, numSymbols, totalRecords, lastUpdated, runs), nil
}

// FormatSummary renders library statistics and recent runs as markdown.
func FormatSummary(name, dbURL string, numSymbols, totalRecords int, lastUpdated time.Time, runs []*data.RunSummary) string {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("# %s\n", name))
	builder.WriteString("## Details\n\n")
	builder.WriteString(fmt.Sprintf("Database: %s\n\n", dbURL))
	builder.WriteString(p.Sprintf("  * Symbols: %d\n", numSymbols))
	builder.WriteString(p.Sprintf("  * Factor Observations: %d\n\n", totalRecords))

	if lastUpdated.IsZero() || lastUpdated.Equal(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)) {
		builder.WriteString("Last Updated: Never\n\n")
	} else {
		age := timeago.English.Format(lastUpdated)
		builder.WriteString(fmt.Sprintf("Last Updated: %s (%s)\n\n", age, lastUpdated.Local().Format("01/02/2006")))
	}

	builder.WriteString("## Recent runs\n\n")
	if len(runs) == 0 {
		builder.WriteString("  * none\n")
	}

	for _, run := range runs {
		builder.WriteString(p.Sprintf("  * %s: %d of %d assets, %d observations, %s [%s]\n",
			run.Collection, run.NumSucceeded, run.NumAssets, run.NumObservations,
			timeago.English.Format(run.EndTime), run.ID.String()[:6]))
	}

	return builder.String()
}

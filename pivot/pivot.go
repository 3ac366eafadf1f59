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

// Package pivot reshapes a ticker's long fact table into wide annual and
// quarterly statement tables, one row per financial tag and one column per
// fiscal period.
package pivot

import (
	"math"
	"sort"
	"strconv"

	"github.com/stone-arbor/secdata/data"
)

// Labels of the synthetic rows inserted ahead of the tag rows in every
// statement table.
const (
	AnnualPeriodLabel  = "12 Months Ending"
	QuarterPeriodLabel = "3 Months Ending"
	FilingNumberLabel  = "FilingNumber"
	SharePriceLabel    = "SharePriceAfterFiledDate"
)

// IndexColumn is the header label of the tag column in output artifacts.
const IndexColumn = "in_usd"

// Table is one wide statement table. Columns is always the complete fixed
// bucket sequence for the table type; buckets without data stay as empty
// cells. Rows hold the synthetic rows first, then tag rows.
type Table struct {
	Ticker  string
	Columns []string
	Rows    []Row
}

// Row is a single labeled table row. Cells maps bucket name to the formatted
// cell text; absent buckets render as empty cells.
type Row struct {
	Label string
	Cells map[string]string
}

// Annual builds the annual statement table from a ticker's facts. Rows with
// four quarters covered qualify directly; instant rows qualify when their
// period end date matches some annual row's date. Returns nil when nothing
// qualifies, in which case no output file should be written.
func Annual(ticker string, facts []data.Fact) *Table {
	rows := periodSubset(facts, data.QtrsAnnual)
	if len(rows) == 0 {
		return nil
	}
	return build(ticker, rows, data.AnnualBucket, data.AnnualColumns(), AnnualPeriodLabel)
}

// Quarterly builds the quarterly statement table. Same shape as Annual with
// single-quarter flow rows.
func Quarterly(ticker string, facts []data.Fact) *Table {
	rows := periodSubset(facts, data.QtrsQuarterly)
	if len(rows) == 0 {
		return nil
	}
	return build(ticker, rows, data.QuarterBucket, data.QuarterColumns(), QuarterPeriodLabel)
}

// periodSubset selects the rows eligible for one table type: every flow row
// with the given quarters-covered value, plus every instant row whose period
// end date matches a flow row's date. Instant rows without a matching flow
// date are excluded from this table but may still qualify for the other one.
func periodSubset(facts []data.Fact, flowQtrs int) []data.Fact {
	flowDates := make(map[int]struct{})
	for _, fact := range facts {
		if fact.Qtrs == flowQtrs {
			flowDates[fact.DDate] = struct{}{}
		}
	}

	subset := make([]data.Fact, 0, len(facts))
	for _, fact := range facts {
		switch {
		case fact.Qtrs == flowQtrs:
			subset = append(subset, fact)
		case fact.Qtrs == data.QtrsInstant:
			if _, ok := flowDates[fact.DDate]; ok {
				subset = append(subset, fact)
			}
		}
	}

	return subset
}

// classified pairs a fact with the bucket it was mapped into.
type classified struct {
	fact   data.Fact
	bucket string
}

func build(ticker string, subset []data.Fact, bucketOf func(int) (string, bool), columns []string, periodLabel string) *Table {
	// classification fails softly: rows without a bucket are dropped here
	rows := make([]classified, 0, len(subset))
	for _, fact := range subset {
		if bucket, ok := bucketOf(fact.DDate); ok {
			rows = append(rows, classified{fact: fact, bucket: bucket})
		}
	}

	// group by (tag, bucket); the first non-missing value per group wins
	values := make(map[string]map[string]float64)
	tags := make([]string, 0, 64)
	dataBuckets := make(map[string]struct{})
	for _, row := range rows {
		if math.IsNaN(row.fact.Value) {
			continue
		}
		cells, ok := values[row.fact.Tag]
		if !ok {
			cells = make(map[string]float64)
			values[row.fact.Tag] = cells
			tags = append(tags, row.fact.Tag)
		}
		if _, taken := cells[row.bucket]; !taken {
			cells[row.bucket] = row.fact.Value
		}
		dataBuckets[row.bucket] = struct{}{}
	}

	table := &Table{Ticker: ticker, Columns: columns}

	// nothing survived classification: emit the table shell so the caller
	// still writes a header-only artifact
	if len(dataBuckets) == 0 {
		return table
	}

	// official date per bucket is the latest period end date mapped into it
	officialDates := make(map[string]int, len(dataBuckets))
	for _, row := range rows {
		if row.fact.DDate > officialDates[row.bucket] {
			officialDates[row.bucket] = row.fact.DDate
		}
	}

	periodCells := make(map[string]string, len(dataBuckets))
	filingCells := make(map[string]string, len(dataBuckets))
	priceCells := make(map[string]string, len(dataBuckets))
	for bucket := range dataBuckets {
		official := officialDates[bucket]
		periodCells[bucket] = strconv.Itoa(official)

		adsh := filingNumber(rows, official)
		filingCells[bucket] = adsh
		priceCells[bucket] = sharePrice(rows, adsh)
	}

	table.Rows = append(table.Rows,
		Row{Label: periodLabel, Cells: periodCells},
		Row{Label: FilingNumberLabel, Cells: filingCells},
		Row{Label: SharePriceLabel, Cells: priceCells},
	)

	sort.Strings(tags)
	for _, tag := range tags {
		cells := make(map[string]string, len(values[tag]))
		for bucket, value := range values[tag] {
			cells[bucket] = formatValue(value)
		}
		table.Rows = append(table.Rows, Row{Label: tag, Cells: cells})
	}

	return table
}

// filingNumber returns the accession id of the earliest-filed row whose
// period end date equals the official date and whose filing date is not
// before it. Ties on filing date resolve to the first row encountered.
func filingNumber(rows []classified, official int) string {
	adsh := ""
	bestFiled := 0
	for _, row := range rows {
		if row.fact.DDate != official || row.fact.Filed < official {
			continue
		}
		if adsh == "" || row.fact.Filed < bestFiled {
			adsh = row.fact.Adsh
			bestFiled = row.fact.Filed
		}
	}
	return adsh
}

// sharePrice returns the formatted price carried by the first row matching
// the winning accession id, or an empty cell when there is no winner or the
// row has no price.
func sharePrice(rows []classified, adsh string) string {
	if adsh == "" {
		return ""
	}
	for _, row := range rows {
		if row.fact.Adsh == adsh {
			return formatValue(row.fact.Price)
		}
	}
	return ""
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

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
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
)

// Quarters-covered markers on a fact. Annual and Quarterly mark flow values
// spanning twelve and three months; Instant marks point-in-time values such
// as balance sheet items.
const (
	QtrsInstant   = 0
	QtrsQuarterly = 1
	QtrsAnnual    = 4
)

// Fact is a single reported financial value from an SEC filing, joined to
// its submission metadata and (optionally) enriched with the share price
// observed after the filing date. Value and Price are NaN when missing.
// Integer fields that failed numeric coercion are set to sentinels that can
// never match a period or subset test, so malformed rows fall out of the
// statement tables without raising.
type Fact struct {
	Ticker string
	Form   string
	CIK    int64
	Adsh   string
	Tag    string
	DDate  int // period end date, YYYYMMDD
	Qtrs   int // quarters covered: 0 instant, 1 quarterly, 4 annual
	Value  float64
	Dimn   int
	Filed  int // filing date, YYYYMMDD
	Price  float64
}

func (fact *Fact) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", fact.Ticker)
	e.Str("Adsh", fact.Adsh)
	e.Str("Tag", fact.Tag)
	e.Int("DDate", fact.DDate)
	e.Int("Qtrs", fact.Qtrs)
	e.Int("Filed", fact.Filed)
}

// factRow is the on-disk shape of a simplified per-ticker fact file. All
// fields are read as text and coerced afterwards so that a bad value in one
// column only blanks that column.
type factRow struct {
	Ticker string `csv:"ticker"`
	Form   string `csv:"form"`
	CIK    string `csv:"cik"`
	Adsh   string `csv:"adsh"`
	Tag    string `csv:"tag"`
	DDate  string `csv:"ddate"`
	Qtrs   string `csv:"qtrs"`
	Value  string `csv:"value"`
	Dimn   string `csv:"dimn"`
	Filed  string `csv:"filed"`
	Price  string `csv:"price"`
}

func (row *factRow) key() string {
	return strings.Join([]string{
		row.Ticker, row.Form, row.CIK, row.Adsh, row.Tag,
		row.DDate, row.Qtrs, row.Value, row.Dimn, row.Filed, row.Price,
	}, "\x1f")
}

func (row *factRow) toFact() Fact {
	return Fact{
		Ticker: row.Ticker,
		Form:   row.Form,
		CIK:    coerceInt64(row.CIK, 0),
		Adsh:   row.Adsh,
		Tag:    row.Tag,
		DDate:  coerceInt(row.DDate, 0),
		Qtrs:   coerceInt(row.Qtrs, -1),
		Value:  coerceFloat(row.Value),
		Dimn:   coerceInt(row.Dimn, 0),
		Filed:  coerceInt(row.Filed, 0),
		Price:  coerceFloat(row.Price),
	}
}

// ReadFactFile loads one per-ticker fact file, drops exact duplicate rows,
// and coerces numeric columns. Coercion failures become missing values, not
// errors.
func ReadFactFile(path string) ([]Fact, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.Comma = '\t'
	reader.LazyQuotes = true

	rows := make([]*factRow, 0, 1024)
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	facts := make([]Fact, 0, len(rows))
	for _, row := range rows {
		k := row.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		facts = append(facts, row.toFact())
	}

	return facts, nil
}

func coerceInt(s string, invalid int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return invalid
	}
	return v
}

func coerceInt64(s string, invalid int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return invalid
	}
	return v
}

func coerceFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

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

// Package enrich attaches a share price to every fact row: one lookup per
// distinct filing date per ticker, resolved to the first trading day at or
// after the day following the filing.
package enrich

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"github.com/stone-arbor/secdata/combine"
)

// PriceSource resolves one closing price for a symbol on or after a calendar
// day. Implementations degrade to an error rather than blocking the batch.
type PriceSource interface {
	PriceOnOrAfter(ctx context.Context, symbol string, day time.Time) (float64, error)
}

// pricedRow is a joined fact row with the share price column appended.
type pricedRow struct {
	combine.JoinedRow
	Price string `csv:"price"`
}

// AddPrices reads every per-ticker file in inputDir, resolves a price for
// each distinct filed date, and writes the rows with a price column to
// outputDir. Lookup failures become empty prices and never abort the run.
func AddPrices(ctx context.Context, inputDir, outputDir string, source PriceSource) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".tsv") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, fn := range files {
		ticker := strings.TrimSuffix(fn, filepath.Ext(fn))
		if err := enrichFile(ctx, filepath.Join(inputDir, fn), filepath.Join(outputDir, fn), ticker, source); err != nil {
			log.Error().Err(err).Str("Ticker", ticker).Str("FileName", fn).Msg("price enrichment failed")
		}
	}

	log.Info().Int("NumFiles", len(files)).Str("OutputDir", outputDir).Msg("price enrichment finished")
	return nil
}

func enrichFile(ctx context.Context, inputPath, outputPath, ticker string, source PriceSource) error {
	fh, err := os.Open(inputPath)
	if err != nil {
		return err
	}

	reader := csv.NewReader(fh)
	reader.Comma = '\t'
	reader.LazyQuotes = true

	rows := make([]*combine.JoinedRow, 0, 1024)
	err = gocsv.UnmarshalCSV(reader, &rows)
	fh.Close()
	if err != nil {
		return err
	}

	// one lookup per distinct filed date; every row filed the same day
	// shares the result
	prices := make(map[string]string)
	for _, row := range rows {
		filed := strings.TrimSpace(row.Filed)
		if _, done := prices[filed]; done {
			continue
		}
		prices[filed] = lookupPrice(ctx, ticker, filed, source)
	}

	priced := make([]*pricedRow, 0, len(rows))
	for _, row := range rows {
		priced = append(priced, &pricedRow{
			JoinedRow: *row,
			Price:     prices[strings.TrimSpace(row.Filed)],
		})
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	csvWriter := csv.NewWriter(out)
	csvWriter.Comma = '\t'
	return gocsv.MarshalCSV(&priced, gocsv.NewSafeCSVWriter(csvWriter))
}

// lookupPrice resolves the price for the first trading day at or after
// filed+1. Any failure, including an unparseable filed date, degrades to an
// empty price.
func lookupPrice(ctx context.Context, ticker, filed string, source PriceSource) string {
	filedDate, err := time.Parse("20060102", filed)
	if err != nil {
		log.Warn().Str("Ticker", ticker).Str("Filed", filed).Msg("cannot parse filed date, price left empty")
		return ""
	}

	price, err := source.PriceOnOrAfter(ctx, ticker, filedDate.AddDate(0, 0, 1))
	if err != nil {
		log.Error().Err(err).Str("Ticker", ticker).Str("Filed", filed).Msg("price lookup failed")
		return ""
	}
	if math.IsNaN(price) {
		return ""
	}

	return strconv.FormatFloat(price, 'f', -1, 64)
}
